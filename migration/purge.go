// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"

	"github.com/juju/errors"

	"github.com/cml-tools/teammigrate/api"
	"github.com/cml-tools/teammigrate/diagnostic"
	"github.com/cml-tools/teammigrate/snapshot"
)

// TeamDeleter deletes teams on the destination instance.
type TeamDeleter interface {
	DeleteTeam(ctx context.Context, team string) error
}

// Purger removes every team named by the snapshot from the
// destination, undoing a previous import.
type Purger struct {
	client TeamDeleter
	store  *snapshot.Store
	sink   *diagnostic.Sink
}

// NewPurger returns a purger deleting through client.
func NewPurger(client TeamDeleter, store *snapshot.Store, sink *diagnostic.Sink) *Purger {
	return &Purger{
		client: client,
		store:  store,
		sink:   sink,
	}
}

// Run deletes each snapshot team, best effort. Absent teams are the
// normal case for a partially imported snapshot and are not failures.
func (p *Purger) Run(ctx context.Context) (int, error) {
	teams, err := p.store.ReadTeams()
	if err != nil {
		return 0, errors.Annotate(err, "reading team snapshot")
	}
	deleted := 0
	for _, team := range teams {
		name := team.Username()
		p.sink.Infof("deleting team %q", name)
		err := p.client.DeleteTeam(ctx, name)
		switch {
		case err == nil:
			deleted++
		case api.IsNotFound(err):
			p.sink.Infof("team %q not present on the destination", name)
		default:
			p.sink.Warningf("deleting team %q failed: %v", name, err)
		}
	}
	return deleted, nil
}
