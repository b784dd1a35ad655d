// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config loads the migration profiles. A profile is an INI
// file naming one platform instance and where to keep the snapshot:
//
//	[DEFAULT]
//	url = https://workspace.example.com
//	username = site-admin
//	apiv1_key = ...
//	output_dir = ~/migrations/run1
//	ca_path = ~/certs/bundle.pem
//	owner_conflict = demote
//
// Export and import read separate profiles, one per instance.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/ini.v1"
)

const (
	urlKey           = "url"
	usernameKey      = "username"
	apiKeyKey        = "apiv1_key"
	outputDirKey     = "output_dir"
	caPathKey        = "ca_path"
	ownerConflictKey = "owner_conflict"
)

// OwnerConflictPolicy says what the importer does with a team carrying
// more than one owner.
type OwnerConflictPolicy string

const (
	// DemoteExtraOwners keeps the first owner and replays the others as
	// admins, with a warning.
	DemoteExtraOwners OwnerConflictPolicy = "demote"
	// FailOnExtraOwners refuses to replay the team.
	FailOnExtraOwners OwnerConflictPolicy = "fail"
)

// Settings is one resolved migration profile.
type Settings struct {
	Host          string
	Username      string
	APIKey        string
	OutputDir     string
	CAPath        string
	OwnerConflict OwnerConflictPolicy
}

// Read loads and validates the profile at path.
func Read(path string) (*Settings, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading profile %q", path)
	}
	section := file.Section(ini.DefaultSection)

	s := &Settings{
		Host:          strings.TrimSuffix(section.Key(urlKey).String(), "/"),
		Username:      section.Key(usernameKey).String(),
		APIKey:        section.Key(apiKeyKey).String(),
		OutputDir:     section.Key(outputDirKey).String(),
		CAPath:        section.Key(caPathKey).String(),
		OwnerConflict: OwnerConflictPolicy(section.Key(ownerConflictKey).String()),
	}
	if s.OwnerConflict == "" {
		s.OwnerConflict = DemoteExtraOwners
	}
	if err := s.validate(path); err != nil {
		return nil, errors.Trace(err)
	}
	if s.OutputDir, err = absPath(s.OutputDir); err != nil {
		return nil, errors.Trace(err)
	}
	if s.CAPath != "" {
		if s.CAPath, err = absPath(s.CAPath); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return s, nil
}

func (s *Settings) validate(path string) error {
	for key, value := range map[string]string{
		urlKey:       s.Host,
		usernameKey:  s.Username,
		apiKeyKey:    s.APIKey,
		outputDirKey: s.OutputDir,
	} {
		if value == "" {
			return errors.NotValidf("profile %q: missing %q", path, key)
		}
	}
	switch s.OwnerConflict {
	case DemoteExtraOwners, FailOnExtraOwners:
	default:
		return errors.NotValidf("profile %q: %s %q", path, ownerConflictKey, s.OwnerConflict)
	}
	return nil
}

// absPath resolves a leading ~ and relative segments.
func absPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Trace(err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Trace(err)
	}
	return abs, nil
}
