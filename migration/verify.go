// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"

	"github.com/juju/errors"

	"github.com/cml-tools/teammigrate/core/diff"
	"github.com/cml-tools/teammigrate/core/metadata"
	"github.com/cml-tools/teammigrate/diagnostic"
	"github.com/cml-tools/teammigrate/snapshot"
)

// teamSkipFields are the team attributes excluded from reconciliation:
// destination-assigned identifiers, usage counters and other volatile
// provider fields, plus the membership container itself, which is
// compared member by member instead.
var teamSkipFields = []string{
	"id", "name", "username_hash", "joined_on", "password_updated_at",
	"followers", "public_projects", "organization_projects",
	"private_projects", "running_dashboards", "members", "api_keys",
	"banned", "deactivated", "namespace", "memory_hours", "cpu_hours",
	"gpu_hours", "avg_session_duration", "jobs_run", "sessions_run",
	"html_url", "ldapSynced", "lastSyncedAt", "teamMembers", "url",
}

// memberSkipFields are the membership attributes excluded from
// reconciliation. Permission is excluded deliberately: the replay
// demotes extra owners to admin, an accepted divergence.
var memberSkipFields = []string{"id", "html_url", "url", "permission"}

// TeamMembersResult is the reconciliation outcome for one shared
// team's membership list.
type TeamMembersResult struct {
	Team   string
	Result diff.Result
}

// VerifyReport aggregates one reconciliation run.
type VerifyReport struct {
	// SourceTeams and DestTeams are the sorted team handles seen on
	// each side.
	SourceTeams []string
	DestTeams   []string
	// Teams reconciles the two team collections.
	Teams diff.Result
	// Members reconciles memberships per team present on both sides,
	// ordered by team handle.
	Members []TeamMembersResult
}

// Passed reports whether no divergence was found anywhere.
func (r *VerifyReport) Passed() bool {
	if !r.Teams.Clean() {
		return false
	}
	for _, m := range r.Members {
		if !m.Result.Clean() {
			return false
		}
	}
	return true
}

// Verifier reconciles the destination's team state against the source.
type Verifier struct {
	source   Lister
	dest     Lister
	store    *snapshot.Store
	sink     *diagnostic.Sink
	cached   bool
	pageSize int
}

// NewVerifier returns a verifier comparing dest against source. With
// cached set, the source side is read from the on-disk snapshot
// instead of a fresh collection.
func NewVerifier(source, dest Lister, store *snapshot.Store, sink *diagnostic.Sink, cached bool, pageSize int) *Verifier {
	return &Verifier{
		source:   source,
		dest:     dest,
		store:    store,
		sink:     sink,
		cached:   cached,
		pageSize: pageSize,
	}
}

// Run reconciles teams then memberships. It always completes,
// whatever the individual diff outcomes; only collection failures
// surface as errors.
func (v *Verifier) Run(ctx context.Context) (*VerifyReport, error) {
	destTeams, err := CollectTeams(ctx, v.dest, v.pageSize)
	if err != nil {
		return nil, errors.Annotate(err, "collecting destination teams")
	}
	var sourceTeams []metadata.Team
	if v.cached {
		if sourceTeams, err = v.store.ReadTeams(); err != nil {
			return nil, errors.Annotate(err, "reading team snapshot")
		}
	} else {
		if sourceTeams, err = CollectTeams(ctx, v.source, v.pageSize); err != nil {
			return nil, errors.Annotate(err, "collecting source teams")
		}
	}

	report := &VerifyReport{
		SourceTeams: metadata.SortedNames(metadata.TeamAttrs(sourceTeams)),
		DestTeams:   metadata.SortedNames(metadata.TeamAttrs(destTeams)),
	}
	v.sink.Infof("source team list %v", report.SourceTeams)
	v.sink.Infof("destination team list %v", report.DestTeams)

	report.Teams = diff.Compare(
		metadata.TeamAttrs(destTeams), metadata.TeamAttrs(sourceTeams),
		report.DestTeams, report.SourceTeams,
		teamSkipFields, "username",
	)
	if len(report.Teams.Missing) > 0 {
		v.sink.Errorf("teams %v not found on both source and destination", report.Teams.Missing)
	}
	if len(report.Teams.FieldDiffs) > 0 {
		v.sink.Errorf("difference in team config %v", report.Teams.FieldDiffs)
	}

	destByName := make(map[string]metadata.Team, len(destTeams))
	for _, t := range destTeams {
		destByName[t.Username()] = t
	}
	// Sorted iteration keeps the report deterministic.
	sourceByName := make(map[string]metadata.Team, len(sourceTeams))
	for _, t := range sourceTeams {
		sourceByName[t.Username()] = t
	}
	for _, name := range report.SourceTeams {
		sourceTeam := sourceByName[name]
		destTeam, ok := destByName[name]
		if !ok {
			continue
		}
		result := v.compareMembers(sourceTeam, destTeam)
		if !result.Clean() {
			v.sink.Errorf("membership difference for team %q: missing %v, config %v",
				name, result.Missing, result.FieldDiffs)
		}
		report.Members = append(report.Members, TeamMembersResult{Team: name, Result: result})
	}
	return report, nil
}

func (v *Verifier) compareMembers(source, dest metadata.Team) diff.Result {
	sourceMembers := metadata.MemberAttrs(source.Members())
	destMembers := metadata.MemberAttrs(dest.Members())
	return diff.Compare(
		destMembers, sourceMembers,
		metadata.SortedNames(destMembers), metadata.SortedNames(sourceMembers),
		memberSkipFields, "username",
	)
}
