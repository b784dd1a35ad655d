// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"

	"github.com/juju/errors"

	"github.com/cml-tools/teammigrate/core/metadata"
	"github.com/cml-tools/teammigrate/diagnostic"
	"github.com/cml-tools/teammigrate/snapshot"
	"github.com/cml-tools/teammigrate/validation"
)

// ErrValidationFailed aborts an import before any mutation.
const ErrValidationFailed = errors.ConstError("pre-import validation failed")

// ImportClient is the destination-instance surface the importer needs.
type ImportClient interface {
	Lister
	TeamWriter
	validation.UserGetter
}

// Importer replays an exported snapshot onto a destination instance.
type Importer struct {
	client   ImportClient
	engine   *Engine
	store    *snapshot.Store
	sink     *diagnostic.Sink
	username string
	pageSize int
}

// NewImporter returns an importer writing through client as the
// configured acting identity.
func NewImporter(client ImportClient, engine *Engine, store *snapshot.Store, sink *diagnostic.Sink, username string, pageSize int) *Importer {
	return &Importer{
		client:   client,
		engine:   engine,
		store:    store,
		sink:     sink,
		username: username,
		pageSize: pageSize,
	}
}

// Run validates the snapshot against the destination, then replays
// every team. Validation failure aborts before any mutation. A failed
// team replay is logged and counted but does not stop the batch; this
// per-team isolation is the only resilience mechanism.
func (i *Importer) Run(ctx context.Context) (*ImportMetrics, error) {
	i.sink.Infof("begin pre-import verification of teams")
	if err := i.validate(ctx, []validation.Validator{
		validation.SnapshotFilesValidator{Store: i.store},
		validation.ActingUserValidator{Client: i.client, Username: i.username},
	}); err != nil {
		return nil, errors.Trace(err)
	}

	teams, err := i.store.ReadTeams()
	if err != nil {
		return nil, errors.Annotate(err, "reading team snapshot")
	}
	destUsers, err := CollectUsers(ctx, i.client, i.pageSize)
	if err != nil {
		return nil, errors.Annotate(err, "collecting destination users")
	}
	if err := i.validate(ctx, []validation.Validator{
		validation.SnapshotIntegrityValidator{Sink: i.sink, Users: destUsers, Teams: teams},
	}); err != nil {
		return nil, errors.Trace(err)
	}

	var failed []string
	for _, team := range teams {
		if err := i.engine.Replay(ctx, team); err != nil {
			i.sink.Errorf("replaying team %q: %v", team.Username(), err)
			failed = append(failed, team.Username())
		}
	}

	destTeams, err := CollectTeams(ctx, i.client, i.pageSize)
	if err != nil {
		return nil, errors.Annotate(err, "collecting destination teams")
	}
	metrics := &ImportMetrics{
		TotalTeams:  len(destTeams),
		TeamNames:   metadata.SortedNames(metadata.TeamAttrs(destTeams)),
		FailedTeams: failed,
	}
	if err := i.store.WriteMetrics(ImportMetricsFile, metrics); err != nil {
		return nil, errors.Trace(err)
	}
	return metrics, nil
}

func (i *Importer) validate(ctx context.Context, validators []validation.Validator) error {
	responses := validation.RunAll(ctx, validators)
	for _, r := range responses {
		if r.Status == validation.Failed {
			i.sink.Errorf("%s: %s", r.Name, r.Message)
		}
	}
	if !validation.AllPassed(responses) {
		return ErrValidationFailed
	}
	return nil
}
