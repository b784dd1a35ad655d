// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"

	"github.com/juju/errors"

	"github.com/cml-tools/teammigrate/core/metadata"
	"github.com/cml-tools/teammigrate/diagnostic"
	"github.com/cml-tools/teammigrate/snapshot"
)

// Exporter snapshots the identity metadata of a source instance.
type Exporter struct {
	client   Lister
	store    *snapshot.Store
	sink     *diagnostic.Sink
	pageSize int
}

// NewExporter returns an exporter reading from client and writing the
// snapshot through store.
func NewExporter(client Lister, store *snapshot.Store, sink *diagnostic.Sink, pageSize int) *Exporter {
	return &Exporter{
		client:   client,
		store:    store,
		sink:     sink,
		pageSize: pageSize,
	}
}

// ExportResult carries the collected records alongside the metrics, so
// a caller can run the consistency check without re-reading the
// snapshot.
type ExportResult struct {
	Users   []metadata.User
	Teams   []metadata.Team
	Metrics ExportMetrics
}

// Run exports users then teams. Users go first: teams reference them
// and the import-side consistency check depends on that ordering.
func (e *Exporter) Run(ctx context.Context) (*ExportResult, error) {
	e.sink.Infof("exporting user metadata to %s", e.store.UsersPath())
	users, err := CollectUsers(ctx, e.client, e.pageSize)
	if err != nil {
		return nil, errors.Annotate(err, "collecting users")
	}
	if err := e.store.WriteUsers(users); err != nil {
		return nil, errors.Trace(err)
	}

	e.sink.Infof("exporting team metadata to %s", e.store.TeamsPath())
	teams, err := CollectTeams(ctx, e.client, e.pageSize)
	if err != nil {
		return nil, errors.Annotate(err, "collecting teams")
	}
	if err := e.store.WriteTeams(teams); err != nil {
		return nil, errors.Trace(err)
	}

	result := &ExportResult{
		Users: users,
		Teams: teams,
		Metrics: ExportMetrics{
			TotalUsers: len(users),
			UserNames:  metadata.SortedNames(metadata.UserAttrs(users)),
			TotalTeams: len(teams),
			TeamNames:  metadata.SortedNames(metadata.TeamAttrs(teams)),
		},
	}
	if err := e.store.WriteMetrics(ExportMetricsFile, result.Metrics); err != nil {
		return nil, errors.Trace(err)
	}
	return result, nil
}
