// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration_test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/juju/loggo"

	"github.com/cml-tools/teammigrate/api"
	"github.com/cml-tools/teammigrate/core/metadata"
	"github.com/cml-tools/teammigrate/diagnostic"
)

func fixedTime() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newSink() *diagnostic.Sink {
	return diagnostic.NewSink(loggo.GetLogger("test.migration"))
}

func member(name, permission string) metadata.Member {
	return metadata.Member{"username": name, "permission": permission}
}

func team(name string, members ...metadata.Member) metadata.Team {
	raw := make([]interface{}, len(members))
	for i, m := range members {
		raw[i] = map[string]interface{}(m)
	}
	return metadata.Team{"username": name, "teamMembers": raw}
}

func notFound(method, path string) error {
	return &api.APIError{StatusCode: http.StatusNotFound, Method: method, Path: path, Message: "not found"}
}

// fakeInstance is an in-memory platform instance. It implements the
// read and write surfaces the orchestrators use, including the
// platform's conflict and not-found behaviour, so replay semantics can
// be tested against real state transitions.
type fakeInstance struct {
	users []metadata.User

	teamOrder []string
	teams     map[string][]metadata.Member

	// keyToUser resolves a delegated credential back to its identity,
	// mirroring how the platform attributes calls.
	keyToUser map[string]string

	listPages   int
	createErr   map[string]error
	deleteErr   map[string]error
	addErr      map[string]error
	getUserErr  error
	listUserErr error
	listTeamErr error
}

func newFakeInstance(users ...metadata.User) *fakeInstance {
	return &fakeInstance{
		users:     users,
		teams:     make(map[string][]metadata.Member),
		keyToUser: make(map[string]string),
		createErr: make(map[string]error),
		deleteErr: make(map[string]error),
		addErr:    make(map[string]error),
	}
}

func (f *fakeInstance) teamRecords() []metadata.Attrs {
	records := make([]metadata.Attrs, 0, len(f.teamOrder))
	for _, name := range f.teamOrder {
		raw := make([]interface{}, len(f.teams[name]))
		for i, m := range f.teams[name] {
			raw[i] = map[string]interface{}(m)
		}
		records = append(records, metadata.Attrs{
			"username":    name,
			"type":        "organization",
			"teamMembers": raw,
		})
	}
	return records
}

// ListPage is part of the migration.Lister interface.
func (f *fakeInstance) ListPage(_ context.Context, kind api.Kind, offset, limit int) ([]metadata.Attrs, error) {
	f.listPages++
	var records []metadata.Attrs
	switch kind {
	case api.KindUser:
		if f.listUserErr != nil {
			return nil, f.listUserErr
		}
		records = metadata.UserAttrs(f.users)
	case api.KindTeam:
		if f.listTeamErr != nil {
			return nil, f.listTeamErr
		}
		records = f.teamRecords()
	}
	if offset >= len(records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end], nil
}

// GetUser is part of the validation.UserGetter interface.
func (f *fakeInstance) GetUser(_ context.Context, username string) (metadata.User, error) {
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	for _, u := range f.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, notFound("GET", "users/"+username)
}

// CreateTeam is part of the migration.TeamWriter interface. The
// creating identity becomes the team owner.
func (f *fakeInstance) CreateTeam(_ context.Context, key string, payload metadata.Attrs) error {
	name, _ := payload["username"].(string)
	if err := f.createErr[name]; err != nil {
		return err
	}
	owner, ok := f.keyToUser[key]
	if !ok {
		return &api.APIError{StatusCode: http.StatusUnauthorized, Method: "POST", Path: "teams", Message: "invalid api key"}
	}
	if _, exists := f.teams[name]; exists {
		return &api.APIError{StatusCode: http.StatusConflict, Method: "POST", Path: "teams", Message: fmt.Sprintf("team %s already exists", name)}
	}
	f.teamOrder = append(f.teamOrder, name)
	f.teams[name] = []metadata.Member{member(owner, metadata.PermissionOwner)}
	return nil
}

// DeleteTeam is part of the migration.TeamWriter interface.
func (f *fakeInstance) DeleteTeam(_ context.Context, name string) error {
	if err := f.deleteErr[name]; err != nil {
		return err
	}
	if _, exists := f.teams[name]; !exists {
		return notFound("DELETE", "teams/"+name)
	}
	delete(f.teams, name)
	for i, n := range f.teamOrder {
		if n == name {
			f.teamOrder = append(f.teamOrder[:i], f.teamOrder[i+1:]...)
			break
		}
	}
	return nil
}

// AddTeamMember is part of the migration.TeamWriter interface.
func (f *fakeInstance) AddTeamMember(_ context.Context, key, name string, payload metadata.Attrs) error {
	username, _ := payload["username"].(string)
	if err := f.addErr[username]; err != nil {
		return err
	}
	if _, ok := f.keyToUser[key]; !ok {
		return &api.APIError{StatusCode: http.StatusUnauthorized, Method: "POST", Path: "teams/" + name + "/members", Message: "invalid api key"}
	}
	members, exists := f.teams[name]
	if !exists {
		return notFound("POST", "teams/"+name+"/members")
	}
	for _, m := range members {
		if m.Username() == username {
			return &api.APIError{
				StatusCode: http.StatusBadRequest,
				Method:     "POST",
				Path:       "teams/" + name + "/members",
				Message:    fmt.Sprintf("user %s is already a member of this team", username),
			}
		}
	}
	permission, _ := payload["permission"].(string)
	f.teams[name] = append(members, member(username, permission))
	return nil
}

// fakeKeyProvider mints "key-<username>" credentials and records what
// was asked of it.
type fakeKeyProvider struct {
	getCalls    []string
	createCalls []string
	expiries    []time.Time
	getErr      error
	createErr   error
}

func (f *fakeKeyProvider) GetAPIKey(_ context.Context, username string) (string, error) {
	f.getCalls = append(f.getCalls, username)
	if f.getErr != nil {
		return "", f.getErr
	}
	return "key-" + username, nil
}

func (f *fakeKeyProvider) CreateAPIKey(_ context.Context, username string, expiry time.Time) (string, error) {
	f.createCalls = append(f.createCalls, username)
	f.expiries = append(f.expiries, expiry)
	if f.createErr != nil {
		return "", f.createErr
	}
	return "key-" + username, nil
}

// grantKeys registers the delegated credentials the provider would
// mint, so calls made with them resolve to the right identity.
func (f *fakeInstance) grantKeys(usernames ...string) {
	for _, u := range usernames {
		f.keyToUser["key-"+u] = u
	}
}
