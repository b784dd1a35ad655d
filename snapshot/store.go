// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package snapshot owns the on-disk layout of one migration output
// directory: the exported user and team records, the per-run metrics,
// and the logs subdirectory. Records are stored verbatim as JSON
// arrays so provider-specific fields survive the round trip.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/juju/errors"

	"github.com/cml-tools/teammigrate/core/metadata"
)

const (
	usersFile = "users.json"
	teamsFile = "teams.json"
	logsDir   = "logs"
)

// Store reads and writes the snapshot files under one output
// directory.
type Store struct {
	baseDir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{baseDir: dir}
}

// EnsureLayout creates the output and logs directories.
func (s *Store) EnsureLayout() error {
	if err := os.MkdirAll(s.LogsDir(), 0755); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// UsersPath returns the path of the exported user records.
func (s *Store) UsersPath() string {
	return filepath.Join(s.baseDir, usersFile)
}

// TeamsPath returns the path of the exported team records.
func (s *Store) TeamsPath() string {
	return filepath.Join(s.baseDir, teamsFile)
}

// LogsDir returns the logs subdirectory path.
func (s *Store) LogsDir() string {
	return filepath.Join(s.baseDir, logsDir)
}

// MetricsPath returns the path of a named metrics file under the logs
// directory.
func (s *Store) MetricsPath(name string) string {
	return filepath.Join(s.LogsDir(), name)
}

// HasSnapshot reports whether both snapshot files exist.
func (s *Store) HasSnapshot() bool {
	for _, path := range []string{s.UsersPath(), s.TeamsPath()} {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// WriteUsers persists the exported user records.
func (s *Store) WriteUsers(users []metadata.User) error {
	return errors.Trace(writeJSON(s.UsersPath(), users))
}

// ReadUsers loads the exported user records.
func (s *Store) ReadUsers() ([]metadata.User, error) {
	var users []metadata.User
	if err := readJSON(s.UsersPath(), &users); err != nil {
		return nil, errors.Trace(err)
	}
	return users, nil
}

// WriteTeams persists the exported team records.
func (s *Store) WriteTeams(teams []metadata.Team) error {
	return errors.Trace(writeJSON(s.TeamsPath(), teams))
}

// ReadTeams loads the exported team records.
func (s *Store) ReadTeams() ([]metadata.Team, error) {
	var teams []metadata.Team
	if err := readJSON(s.TeamsPath(), &teams); err != nil {
		return nil, errors.Trace(err)
	}
	return teams, nil
}

// WriteMetrics persists a metrics document under the logs directory.
func (s *Store) WriteMetrics(name string, metrics interface{}) error {
	return errors.Trace(writeJSON(s.MetricsPath(name), metrics))
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func readJSON(path string, value interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Trace(err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return errors.Annotatef(err, "parsing %q", path)
	}
	return nil
}
