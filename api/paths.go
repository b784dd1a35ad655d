// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"fmt"
	"net/url"
)

// Kind selects which flavour of identity record a list call returns.
// The platform models teams as organization-typed user records.
type Kind string

const (
	KindUser Kind = "user"
	KindTeam Kind = "organization"
)

// apiV1Prefix is the fixed base path of the v1 API.
const apiV1Prefix = "/api/v1/"

// listPath returns the paged identity list endpoint.
func listPath(kind Kind, offset, limit int) string {
	values := url.Values{}
	values.Set("offset", fmt.Sprint(offset))
	values.Set("limit", fmt.Sprint(limit))
	values.Set("type", string(kind))
	return "users?" + values.Encode()
}

// userPath returns the endpoint of one user record.
func userPath(username string) string {
	return "users/" + url.PathEscape(username)
}

// apiKeyPath returns the scoped credential endpoint of one user.
func apiKeyPath(username string) string {
	return "users/" + url.PathEscape(username) + "/apikey"
}

// teamsPath is the team creation endpoint.
const teamsPath = "teams"

// teamPath returns the endpoint of one team record.
func teamPath(team string) string {
	return "teams/" + url.PathEscape(team)
}

// teamMembersPath returns the membership endpoint of one team.
func teamMembersPath(team string) string {
	return "teams/" + url.PathEscape(team) + "/members"
}
