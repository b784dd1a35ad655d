// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/juju/clock"
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/cml-tools/teammigrate/migration"
)

const importDoc = `
import recreates the exported teams on the destination instance. The
snapshot is validated against the destination first; any validation
failure aborts the import before it changes anything.

Each team is deleted from the destination if already present, then
recreated from the snapshot under its owner's identity. A team that
fails to replay is reported and skipped; the remaining teams are still
imported.

The destination instance is read from import.ini in the configuration
directory. With --verify, the destination is reconciled against the
snapshot after the import and the command fails on any divergence.

Examples:
    cmlteam import
    cmlteam import --verify
`

func newImportCommand() cmd.Command {
	return &importCommand{}
}

type importCommand struct {
	migrateCommandBase

	verify bool
}

func (c *importCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "import",
		Purpose: "Recreate the exported teams on the destination instance.",
		Doc:     importDoc,
	}
}

func (c *importCommand) SetFlags(f *gnuflag.FlagSet) {
	c.migrateCommandBase.SetFlags(f)
	f.BoolVar(&c.verify, "verify", false, "reconcile the destination against the snapshot afterwards")
}

func (c *importCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

func (c *importCommand) Run(ctx *cmd.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	start := clock.WallClock.Now()
	settings, err := c.readProfile(importProfileName)
	if err != nil {
		return errors.Trace(err)
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
	keys := migration.NewKeyCache(client, clock.WallClock, sink, settings.Username, settings.APIKey)
	engine := migration.NewEngine(client, keys, sink, settings.OwnerConflict)
	importer := migration.NewImporter(client, engine, store, sink, settings.Username, migration.DefaultPageSize)

	metrics, err := importer.Run(runCtx)
	if err != nil {
		reportDiagnostics(ctx, sink)
		return errors.Trace(err)
	}

	printNames(ctx, "teams on destination", metrics.TeamNames)
	reportDiagnostics(ctx, sink)
	if len(metrics.FailedTeams) > 0 {
		printNames(ctx, "failed teams", metrics.FailedTeams)
		return errors.Errorf("%d teams failed to import", len(metrics.FailedTeams))
	}

	if c.verify {
		verifier := migration.NewVerifier(nil, client, store, sink, true, migration.DefaultPageSize)
		report, err := verifier.Run(runCtx)
		if err != nil {
			return errors.Trace(err)
		}
		if !report.Passed() {
			return errors.Errorf("post-import verification found divergence")
		}
		ctx.Infof("post-import verification passed")
	}
	printElapsed(ctx, start)
	return nil
}
