// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package validation

import (
	"context"
	"fmt"
	"os"

	"github.com/cml-tools/teammigrate/api"
	"github.com/cml-tools/teammigrate/core/metadata"
	"github.com/cml-tools/teammigrate/diagnostic"
)

// UserGetter fetches one user record from an instance.
type UserGetter interface {
	GetUser(ctx context.Context, username string) (metadata.User, error)
}

// OutputDirValidator checks that the configured output directory
// exists.
type OutputDirValidator struct {
	Dir string
}

// Validate is part of the Validator interface.
func (v OutputDirValidator) Validate(_ context.Context) Response {
	name := "check that the output directory exists"
	info, err := os.Stat(v.Dir)
	if err != nil || !info.IsDir() {
		return Response{
			Name:    name,
			Message: fmt.Sprintf("directory %q does not exist", v.Dir),
			Status:  Failed,
		}
	}
	return Response{Name: name, Message: "validation passed", Status: Passed}
}

// SnapshotFilesValidator checks that a prior export left both snapshot
// files in place.
type SnapshotFilesValidator struct {
	Store interface{ HasSnapshot() bool }
}

// Validate is part of the Validator interface.
func (v SnapshotFilesValidator) Validate(_ context.Context) Response {
	name := "check that the exported snapshot files exist"
	if !v.Store.HasSnapshot() {
		return Response{
			Name:    name,
			Message: "snapshot files not present; run export first",
			Status:  Failed,
		}
	}
	return Response{Name: name, Message: "validation passed", Status: Passed}
}

// ActingUserValidator checks that the configured acting identity exists
// on the instance and that its credential is accepted.
type ActingUserValidator struct {
	Client   UserGetter
	Username string
}

// Validate is part of the Validator interface.
func (v ActingUserValidator) Validate(ctx context.Context) Response {
	name := fmt.Sprintf("check that user %q is present", v.Username)
	_, err := v.Client.GetUser(ctx, v.Username)
	switch {
	case err == nil:
		return Response{Name: name, Message: "the user name exists", Status: Passed}
	case api.IsNotFound(err):
		return Response{
			Name:    name,
			Message: fmt.Sprintf("the user name does not exist; ensure the username %q is correct", v.Username),
			Status:  Failed,
		}
	case api.IsUnauthorized(err):
		return Response{
			Name:    name,
			Message: "the user is unauthorised; ensure the API key is correct",
			Status:  Failed,
		}
	default:
		return Response{
			Name:    name,
			Message: fmt.Sprintf("error while validating username: %v", err),
			Status:  Failed,
		}
	}
}

// SnapshotIntegrityValidator runs the teams/users consistency check
// over the exported team data and the destination user list.
type SnapshotIntegrityValidator struct {
	Sink  *diagnostic.Sink
	Users []metadata.User
	Teams []metadata.Team
}

// Validate is part of the Validator interface.
func (v SnapshotIntegrityValidator) Validate(_ context.Context) Response {
	name := "check that every team member and owner exists on the destination"
	if !CheckTeamsUsers(v.Sink, v.Users, v.Teams) {
		return Response{
			Name:    name,
			Message: fmt.Sprintf("consistency check failed: %v", v.Sink.Errors()),
			Status:  Failed,
		}
	}
	return Response{Name: name, Message: "validation passed", Status: Passed}
}
