// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"fmt"

	"github.com/juju/clock"
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/cml-tools/teammigrate/migration"
	"github.com/cml-tools/teammigrate/validation"
)

const exportDoc = `
export snapshots the source instance's user and team metadata into the
profile's output directory: users.json, teams.json, and an export
metrics file under logs/.

The source instance is read from export.ini in the configuration
directory. With --verify, the exported snapshot is additionally
checked for internal consistency (every team has an owner, every
member exists) and the command fails if the check does.

Examples:
    cmlteam export
    cmlteam export --verify --config-dir ./profiles
`

func newExportCommand() cmd.Command {
	return &exportCommand{}
}

type exportCommand struct {
	migrateCommandBase

	verify bool
}

func (c *exportCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "export",
		Purpose: "Snapshot user and team metadata from the source instance.",
		Doc:     exportDoc,
	}
}

func (c *exportCommand) SetFlags(f *gnuflag.FlagSet) {
	c.migrateCommandBase.SetFlags(f)
	f.BoolVar(&c.verify, "verify", false, "also check the exported snapshot for consistency")
}

func (c *exportCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

func (c *exportCommand) Run(ctx *cmd.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	start := clock.WallClock.Now()
	settings, err := c.readProfile(exportProfileName)
	if err != nil {
		return errors.Trace(err)
	}
	// The output directory must exist before the store lays out
	// anything inside it.
	responses := validation.RunAll(runCtx, []validation.Validator{
		validation.OutputDirValidator{Dir: settings.OutputDir},
	})
	if !validation.AllPassed(responses) {
		for _, r := range responses {
			if r.Status == validation.Failed {
				fmt.Fprintf(ctx.Stderr, "error: %s: %s\n", r.Name, r.Message)
			}
		}
		return errors.Errorf("pre-export validation failed")
	}
	store, closeLog, err := openStore(settings)
	if err != nil {
		return errors.Trace(err)
	}
	defer closeLog()
	client, err := c.client(settings)
	if err != nil {
		return errors.Trace(err)
	}

	sink := newSink()
	exporter := migration.NewExporter(client, store, sink, migration.DefaultPageSize)
	result, err := exporter.Run(runCtx)
	if err != nil {
		return errors.Trace(err)
	}

	printNames(ctx, "users", result.Metrics.UserNames)
	printNames(ctx, "teams", result.Metrics.TeamNames)

	if c.verify {
		if !validation.CheckTeamsUsers(sink, result.Users, result.Teams) {
			reportDiagnostics(ctx, sink)
			return errors.Errorf("exported snapshot failed the consistency check")
		}
		ctx.Infof("consistency check passed")
	}
	reportDiagnostics(ctx, sink)
	printElapsed(ctx, start)
	return nil
}
