// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"
	"github.com/juju/lumberjack/v2"

	"github.com/cml-tools/teammigrate/api"
	"github.com/cml-tools/teammigrate/config"
	"github.com/cml-tools/teammigrate/diagnostic"
	"github.com/cml-tools/teammigrate/migration"
	"github.com/cml-tools/teammigrate/snapshot"
	"github.com/cml-tools/teammigrate/validation"
)

var logger = loggo.GetLogger("cmlteam")

const (
	defaultConfigDir  = "~/.cmlteam"
	exportProfileName = "export.ini"
	importProfileName = "import.ini"
	runLogFileName    = "cmlteam.log"
)

// platformClient is the full platform surface a workflow can need.
// *api.Client implements it; tests substitute fakes.
type platformClient interface {
	migration.Lister
	migration.TeamWriter
	migration.KeyProvider
	validation.UserGetter
}

// migrateCommandBase carries what every subcommand shares: the profile
// directory flag and the client construction hook.
type migrateCommandBase struct {
	cmd.CommandBase

	configDir string

	// newClient is replaceable for testing.
	newClient func(settings *config.Settings) (platformClient, error)
}

func (c *migrateCommandBase) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.configDir, "config-dir", defaultConfigDir, "directory holding the migration profiles")
}

// readProfile loads the named profile from the configuration
// directory.
func (c *migrateCommandBase) readProfile(name string) (*config.Settings, error) {
	dir := c.configDir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Trace(err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir[1:], "/"))
	}
	settings, err := config.Read(filepath.Join(dir, name))
	return settings, errors.Trace(err)
}

// client returns a platform client for the given profile.
func (c *migrateCommandBase) client(settings *config.Settings) (platformClient, error) {
	if c.newClient != nil {
		return c.newClient(settings)
	}
	transport, err := api.NewHTTPTransport(logger, settings.CAPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	requester := api.NewAPIRequester(transport, logger)
	return api.NewClient(settings.Host, settings.APIKey, requester), nil
}

// openStore prepares the snapshot directory and attaches a rotating
// run log under its logs subdirectory. The returned closer detaches
// the log writer.
func openStore(settings *config.Settings) (*snapshot.Store, func(), error) {
	store := snapshot.NewStore(settings.OutputDir)
	if err := store.EnsureLayout(); err != nil {
		return nil, nil, errors.Trace(err)
	}
	writer := &lumberjack.Logger{
		Filename:   filepath.Join(store.LogsDir(), runLogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 2,
	}
	name := "cmlteam-run-log"
	err := loggo.RegisterWriter(name, loggo.NewSimpleWriter(writer, loggo.DefaultFormatter))
	if err != nil {
		// A leftover writer from the same process is not fatal.
		logger.Warningf("cannot attach run log: %v", err)
		return store, func() { _ = writer.Close() }, nil
	}
	return store, func() {
		_, _ = loggo.RemoveWriter(name)
		_ = writer.Close()
	}, nil
}

// newSink returns the diagnostic sink a workflow records through.
func newSink() *diagnostic.Sink {
	return diagnostic.NewSink(logger)
}

// printNames writes a count plus the sorted name list, matching the
// summary format of the export metrics file.
func printNames(ctx *cmd.Context, label string, names []string) {
	fmt.Fprintf(ctx.Stdout, "%s (%d): %s\n", label, len(names), strings.Join(names, ", "))
}

// printElapsed reports wall time for the whole workflow run.
func printElapsed(ctx *cmd.Context, start time.Time) {
	fmt.Fprintf(ctx.Stdout, "completed in %.1fs\n", time.Since(start).Seconds())
}

// reportDiagnostics surfaces recorded warnings and errors on stderr so
// a non-interactive caller sees them without reading the run log.
func reportDiagnostics(ctx *cmd.Context, sink *diagnostic.Sink) {
	for _, w := range sink.Warnings() {
		fmt.Fprintf(ctx.Stderr, "warning: %s\n", w)
	}
	for _, e := range sink.Errors() {
		fmt.Fprintf(ctx.Stderr, "error: %s\n", e)
	}
}
