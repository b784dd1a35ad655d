// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"
	"strings"

	"github.com/juju/errors"

	"github.com/cml-tools/teammigrate/api"
	"github.com/cml-tools/teammigrate/config"
	"github.com/cml-tools/teammigrate/core/metadata"
	"github.com/cml-tools/teammigrate/diagnostic"
)

// ErrNoTeamOwner reports a team record without any owner membership.
// The consistency check catches these before import, but the engine
// must not rely on that.
const ErrNoTeamOwner = errors.ConstError("team has no owner membership")

// alreadyMemberMessage is the platform's error message for a duplicate
// membership add. There is no structured error code for it.
const alreadyMemberMessage = "is already a member of this team"

// IsAlreadyMember reports whether err is the platform rejecting a
// membership add because the user already belongs to the team.
func IsAlreadyMember(err error) bool {
	return strings.Contains(api.ErrorMessage(err), alreadyMemberMessage)
}

// TeamWriter mutates teams on the destination instance.
type TeamWriter interface {
	CreateTeam(ctx context.Context, key string, team metadata.Attrs) error
	DeleteTeam(ctx context.Context, team string) error
	AddTeamMember(ctx context.Context, key, team string, member metadata.Attrs) error
}

// Engine recreates teams on the destination. Replay is destructive:
// any existing team of the same name is deleted first and rebuilt from
// the snapshot, so reruns converge on the snapshot state rather than
// merging with destination-side changes.
type Engine struct {
	client TeamWriter
	keys   *KeyCache
	sink   *diagnostic.Sink
	policy config.OwnerConflictPolicy
}

// NewEngine returns a replay engine writing through client, acting as
// team owners via keys.
func NewEngine(client TeamWriter, keys *KeyCache, sink *diagnostic.Sink, policy config.OwnerConflictPolicy) *Engine {
	return &Engine{
		client: client,
		keys:   keys,
		sink:   sink,
		policy: policy,
	}
}

// Replay recreates one team and its memberships on the destination.
// The team is created under the owner's delegated identity so the
// destination team is owned by the correct user from creation; the
// remaining members are then added acting as that owner.
func (e *Engine) Replay(ctx context.Context, team metadata.Team) error {
	teamName := team.Username()
	owners := team.Owners()
	if len(owners) == 0 {
		return errors.Annotatef(ErrNoTeamOwner, "team %q", teamName)
	}
	if len(owners) > 1 && e.policy == config.FailOnExtraOwners {
		return errors.Errorf("team %q has %d owners and the owner conflict policy is %q", teamName, len(owners), e.policy)
	}
	ownerName := owners[0].Username()

	e.deleteExisting(ctx, teamName)

	ownerKey := e.keys.KeyFor(ctx, ownerName)
	e.sink.Infof("adding team %q as user %q", teamName, ownerName)
	if err := e.client.CreateTeam(ctx, ownerKey, team.CreatePayload()); err != nil {
		return errors.Annotatef(err, "creating team %q", teamName)
	}

	for _, m := range team.Members() {
		if m.Permission() == metadata.PermissionOwner {
			continue
		}
		if err := e.addMember(ctx, ownerKey, teamName, m); err != nil {
			return errors.Trace(err)
		}
	}
	for _, extra := range owners[1:] {
		e.sink.Warningf("more than one owner found for team %q; owner %q will be converted to admin after migration", teamName, extra.Username())
		if err := e.addMember(ctx, ownerKey, teamName, extra.WithPermission(metadata.PermissionAdmin)); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// deleteExisting clears any previous team of the same name. Deletion
// is best-effort cleanup, not a precondition: an absent team is the
// normal first-run case and any other failure surfaces when the
// create is attempted.
func (e *Engine) deleteExisting(ctx context.Context, teamName string) {
	err := e.client.DeleteTeam(ctx, teamName)
	switch {
	case err == nil:
		e.sink.Infof("deleted existing team %q on the destination", teamName)
	case api.IsNotFound(err):
		e.sink.Infof("team %q not present on the destination", teamName)
	default:
		e.sink.Warningf("best-effort delete of team %q failed: %v", teamName, err)
	}
}

func (e *Engine) addMember(ctx context.Context, key, teamName string, m metadata.Member) error {
	e.sink.Infof("adding member %q to team %q", m.Username(), teamName)
	err := e.client.AddTeamMember(ctx, key, teamName, m.AddPayload())
	if err == nil {
		return nil
	}
	if IsAlreadyMember(err) {
		e.sink.Warningf("ignoring error since member %q is already added to team %q", m.Username(), teamName)
		return nil
	}
	return errors.Annotatef(err, "adding member %q to team %q", m.Username(), teamName)
}
