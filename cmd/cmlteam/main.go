// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// cmlteam migrates team and user membership metadata between two
// workspace platform instances.
package main

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v3"
)

var doc = `
cmlteam migrates team and user membership metadata between two
workspace platform instances.

A migration runs in stages: export snapshots the source instance's
users and teams to a local directory, import validates the snapshot
against the destination and recreates each team there, and verify
reconciles the destination against the source. purge undoes a previous
import by deleting the snapshot's teams from the destination.

Connection profiles are read from the configuration directory
(default ~/.cmlteam): export.ini for the source instance and
import.ini for the destination.
`

// Main registers subcommands for the cmlteam executable and hands
// over control to the cmd package. It exists separately from main as
// an entry point for testing with arbitrary arguments.
func Main(args []string) {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.Main(newSuperCommand(), ctx, args[1:]))
}

func newSuperCommand() cmd.Command {
	c := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name: "cmlteam",
		Doc:  doc,
		Log:  &cmd.Log{},
	})
	c.Register(newExportCommand())
	c.Register(newImportCommand())
	c.Register(newVerifyCommand())
	c.Register(newPurgeCommand())
	return c
}

func main() {
	Main(os.Args)
}
