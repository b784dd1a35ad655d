// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"fmt"

	"github.com/juju/clock"
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"

	"github.com/cml-tools/teammigrate/migration"
)

const purgeDoc = `
purge deletes every team named by the local snapshot from the
destination instance, undoing a previous import. Teams not present on
the destination are skipped; users are never deleted.

The destination is read from import.ini in the configuration
directory.

Examples:
    cmlteam purge
`

func newPurgeCommand() cmd.Command {
	return &purgeCommand{}
}

type purgeCommand struct {
	migrateCommandBase
}

func (c *purgeCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "purge",
		Purpose: "Delete the snapshot's teams from the destination instance.",
		Doc:     purgeDoc,
	}
}

func (c *purgeCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

func (c *purgeCommand) Run(ctx *cmd.Context) error {
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
	purger := migration.NewPurger(client, store, sink)
	deleted, err := purger.Run(runCtx)
	if err != nil {
		return errors.Trace(err)
	}

	fmt.Fprintf(ctx.Stdout, "deleted %d teams\n", deleted)
	reportDiagnostics(ctx, sink)
	printElapsed(ctx, start)
	return nil
}
