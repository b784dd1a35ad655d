// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	gc "gopkg.in/check.v1"

	"github.com/cml-tools/teammigrate/api"
	"github.com/cml-tools/teammigrate/core/metadata"
)

// fakePlatform is an in-memory platform instance backing the command
// tests end to end.
type fakePlatform struct {
	users []metadata.User

	teamOrder []string
	teams     map[string][]metadata.Member

	keyToUser map[string]string

	createErr map[string]error
}

func newFakePlatform(users ...metadata.User) *fakePlatform {
	return &fakePlatform{
		users:     users,
		teams:     make(map[string][]metadata.Member),
		keyToUser: make(map[string]string),
		createErr: make(map[string]error),
	}
}

func (f *fakePlatform) addTeam(name string, owner string, members ...metadata.Member) {
	all := append([]metadata.Member{{
		"username": owner, "permission": metadata.PermissionOwner,
	}}, members...)
	f.teamOrder = append(f.teamOrder, name)
	f.teams[name] = all
}

func (f *fakePlatform) ListPage(_ context.Context, kind api.Kind, offset, limit int) ([]metadata.Attrs, error) {
	var records []metadata.Attrs
	switch kind {
	case api.KindUser:
		records = metadata.UserAttrs(f.users)
	case api.KindTeam:
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

func (f *fakePlatform) GetUser(_ context.Context, username string) (metadata.User, error) {
	for _, u := range f.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, &api.APIError{StatusCode: http.StatusNotFound, Method: "GET", Path: "users/" + username, Message: "not found"}
}

func (f *fakePlatform) GetAPIKey(_ context.Context, username string) (string, error) {
	key := "key-" + username
	f.keyToUser[key] = username
	return key, nil
}

func (f *fakePlatform) CreateAPIKey(_ context.Context, username string, _ time.Time) (string, error) {
	return f.GetAPIKey(context.Background(), username)
}

func (f *fakePlatform) CreateTeam(_ context.Context, key string, payload metadata.Attrs) error {
	name, _ := payload["username"].(string)
	if err := f.createErr[name]; err != nil {
		return err
	}
	owner, ok := f.keyToUser[key]
	if !ok {
		return &api.APIError{StatusCode: http.StatusUnauthorized, Method: "POST", Path: "teams", Message: "invalid api key"}
	}
	f.addTeam(name, owner)
	return nil
}

func (f *fakePlatform) DeleteTeam(_ context.Context, name string) error {
	if _, exists := f.teams[name]; !exists {
		return &api.APIError{StatusCode: http.StatusNotFound, Method: "DELETE", Path: "teams/" + name, Message: "not found"}
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

func (f *fakePlatform) AddTeamMember(_ context.Context, key, name string, payload metadata.Attrs) error {
	if _, ok := f.keyToUser[key]; !ok {
		return &api.APIError{StatusCode: http.StatusUnauthorized, Method: "POST", Path: "teams/" + name + "/members", Message: "invalid api key"}
	}
	members, exists := f.teams[name]
	if !exists {
		return &api.APIError{StatusCode: http.StatusNotFound, Method: "POST", Path: "teams/" + name + "/members", Message: "not found"}
	}
	username, _ := payload["username"].(string)
	permission, _ := payload["permission"].(string)
	f.teams[name] = append(members, metadata.Member{"username": username, "permission": permission})
	return nil
}

// writeProfiles lays out a configuration directory whose export and
// import profiles both point their output at dataDir.
func writeProfiles(c *gc.C, dataDir string) string {
	configDir := c.MkDir()
	for _, name := range []string{exportProfileName, importProfileName} {
		content := fmt.Sprintf(
			"url = https://workspace.example.com\nusername = admin\napiv1_key = primary-key\noutput_dir = %s\n",
			dataDir)
		err := os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644)
		c.Assert(err, gc.IsNil)
	}
	return configDir
}
