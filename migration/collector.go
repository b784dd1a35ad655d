// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package migration implements the team migration engine: collecting
// identity metadata from a source workspace instance, replaying teams
// onto a destination instance under delegated credentials, and
// reconciling the two afterwards.
package migration

import (
	"context"

	"github.com/juju/errors"

	"github.com/cml-tools/teammigrate/api"
	"github.com/cml-tools/teammigrate/core/metadata"
)

// DefaultPageSize is the page size used against real instances.
const DefaultPageSize = 10000

// Lister fetches one page of identity records from an instance.
type Lister interface {
	ListPage(ctx context.Context, kind api.Kind, offset, limit int) ([]metadata.Attrs, error)
}

// Collect drains the identity list of the given kind, page by page.
// The stop signal is an empty page, not a short one, so a collection
// of an exact multiple of pageSize records costs one extra round trip.
// A failed page request fails the whole collection.
func Collect(ctx context.Context, lister Lister, kind api.Kind, pageSize int) ([]metadata.Attrs, error) {
	var all []metadata.Attrs
	for page := 0; ; page++ {
		records, err := lister.ListPage(ctx, kind, page*pageSize, pageSize)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if len(records) == 0 {
			return all, nil
		}
		all = append(all, records...)
	}
}

// CollectUsers drains the user list of an instance.
func CollectUsers(ctx context.Context, lister Lister, pageSize int) ([]metadata.User, error) {
	records, err := Collect(ctx, lister, api.KindUser, pageSize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	users := make([]metadata.User, len(records))
	for i, r := range records {
		users[i] = metadata.User(r)
	}
	return users, nil
}

// CollectTeams drains the team list of an instance.
func CollectTeams(ctx context.Context, lister Lister, pageSize int) ([]metadata.Team, error) {
	records, err := Collect(ctx, lister, api.KindTeam, pageSize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	teams := make([]metadata.Team, len(records))
	for i, r := range records {
		teams[i] = metadata.Team(r)
	}
	return teams, nil
}
