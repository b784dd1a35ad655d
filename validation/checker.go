// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package validation

import (
	"github.com/cml-tools/teammigrate/core/metadata"
	"github.com/cml-tools/teammigrate/diagnostic"
)

// CheckTeamsUsers validates exported team data against a user list
// before any import mutation: every team must have at least one owner,
// the resolved owner and every member must exist in users. More than
// one owner, or an owner without site-admin rights, is anomalous but
// tolerated with a warning. Pure; all findings go to the sink.
func CheckTeamsUsers(sink *diagnostic.Sink, users []metadata.User, teams []metadata.Team) bool {
	byName := make(map[string]metadata.User, len(users))
	for _, u := range users {
		byName[u.Username()] = u
	}

	result := true
	for _, team := range teams {
		teamName := team.Username()
		owners := team.Owners()
		if len(owners) == 0 {
			sink.Errorf("team %q should have at least one team owner", teamName)
			result = false
			continue
		}
		if len(owners) > 1 {
			names := make([]string, len(owners))
			for i, o := range owners {
				names[i] = o.Username()
			}
			sink.Warningf("team %q has more than one owner %v, which will conflict on the destination workspace", teamName, names)
		}
		ownerName := owners[0].Username()
		if owner, ok := byName[ownerName]; ok {
			if !owner.IsAdmin() {
				sink.Warningf("owner %q of team %q is not a site admin and may lack permission to add teams", ownerName, teamName)
			}
		} else {
			sink.Errorf("user %q in team %q is not present in the user list", ownerName, teamName)
			result = false
		}

		for _, member := range team.Members() {
			if _, ok := byName[member.Username()]; !ok {
				sink.Errorf("user %q in team %q is not present in the user list", member.Username(), teamName)
				result = false
			}
		}
	}
	return result
}
