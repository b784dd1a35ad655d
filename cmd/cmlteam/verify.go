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
)

const verifyDoc = `
verify reconciles the destination instance's teams against the source.
Team records are compared field by field, excluding volatile
provider-assigned fields, and each shared team's membership list is
compared member by member. Permission differences are accepted: the
import demotes extra owners to admin.

The destination is read from import.ini and the source from export.ini
in the configuration directory. With --cached, the source side is read
from the local snapshot instead of the source instance, so the source
does not need to be reachable.

The reconciliation always runs to completion. The command fails if any
divergence was found.

Examples:
    cmlteam verify
    cmlteam verify --cached
`

func newVerifyCommand() cmd.Command {
	return &verifyCommand{}
}

type verifyCommand struct {
	migrateCommandBase

	cached bool
}

func (c *verifyCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "verify",
		Purpose: "Reconcile the destination's teams against the source.",
		Doc:     verifyDoc,
	}
}

func (c *verifyCommand) SetFlags(f *gnuflag.FlagSet) {
	c.migrateCommandBase.SetFlags(f)
	f.BoolVar(&c.cached, "cached", false, "read the source side from the local snapshot")
}

func (c *verifyCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

func (c *verifyCommand) Run(ctx *cmd.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	start := clock.WallClock.Now()
	destSettings, err := c.readProfile(importProfileName)
	if err != nil {
		return errors.Trace(err)
	}
	store, closeLog, err := openStore(destSettings)
	if err != nil {
		return errors.Trace(err)
	}
	defer closeLog()
	dest, err := c.client(destSettings)
	if err != nil {
		return errors.Trace(err)
	}

	var source platformClient
	if !c.cached {
		sourceSettings, err := c.readProfile(exportProfileName)
		if err != nil {
			return errors.Trace(err)
		}
		if source, err = c.client(sourceSettings); err != nil {
			return errors.Trace(err)
		}
	}

	sink := newSink()
	verifier := migration.NewVerifier(source, dest, store, sink, c.cached, migration.DefaultPageSize)
	report, err := verifier.Run(runCtx)
	if err != nil {
		return errors.Trace(err)
	}

	printNames(ctx, "source teams", report.SourceTeams)
	printNames(ctx, "destination teams", report.DestTeams)
	reportDiagnostics(ctx, sink)
	printElapsed(ctx, start)
	if !report.Passed() {
		return errors.Errorf("verification found divergence between source and destination")
	}
	fmt.Fprintln(ctx.Stdout, "verification passed")
	return nil
}
