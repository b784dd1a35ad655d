// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package validation_test

import (
	"github.com/juju/loggo"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/cml-tools/teammigrate/core/metadata"
	"github.com/cml-tools/teammigrate/diagnostic"
	"github.com/cml-tools/teammigrate/validation"
)

type checkerSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&checkerSuite{})

func team(name string, members ...metadata.Member) metadata.Team {
	raw := make([]interface{}, len(members))
	for i, m := range members {
		raw[i] = map[string]interface{}(m)
	}
	return metadata.Team{"username": name, "teamMembers": raw}
}

func member(name, permission string) metadata.Member {
	return metadata.Member{"username": name, "permission": permission}
}

func newSink() *diagnostic.Sink {
	return diagnostic.NewSink(loggo.GetLogger("test.validation"))
}

var checkUsers = []metadata.User{
	{"username": "alice", "admin": true},
	{"username": "bob", "admin": false},
	{"username": "carol", "admin": true},
}

func (*checkerSuite) TestWellFormedTeamPasses(c *gc.C) {
	sink := newSink()
	ok := validation.CheckTeamsUsers(sink, checkUsers, []metadata.Team{
		team("t1", member("alice", "owner"), member("bob", "member")),
	})
	c.Check(ok, jc.IsTrue)
	c.Check(sink.Errors(), gc.HasLen, 0)
	c.Check(sink.Warnings(), gc.HasLen, 0)
}

func (*checkerSuite) TestZeroOwnersFails(c *gc.C) {
	sink := newSink()
	ok := validation.CheckTeamsUsers(sink, checkUsers, []metadata.Team{
		team("t1", member("bob", "member")),
	})
	c.Check(ok, jc.IsFalse)
	c.Check(sink.Errors(), jc.DeepEquals,
		[]string{`team "t1" should have at least one team owner`})
}

func (*checkerSuite) TestMultipleOwnersWarnsOnly(c *gc.C) {
	sink := newSink()
	ok := validation.CheckTeamsUsers(sink, checkUsers, []metadata.Team{
		team("t1", member("alice", "owner"), member("carol", "owner")),
	})
	c.Check(ok, jc.IsTrue)
	c.Check(sink.Warnings(), gc.HasLen, 1)
	c.Check(sink.Warnings()[0], gc.Matches, `team "t1" has more than one owner.*`)
}

func (*checkerSuite) TestOwnerMissingFromUsersFails(c *gc.C) {
	sink := newSink()
	ok := validation.CheckTeamsUsers(sink, checkUsers, []metadata.Team{
		team("t1", member("mallory", "owner")),
	})
	c.Check(ok, jc.IsFalse)
	c.Check(sink.Errors(), jc.DeepEquals, []string{
		`user "mallory" in team "t1" is not present in the user list`,
		`user "mallory" in team "t1" is not present in the user list`,
	})
}

func (*checkerSuite) TestMemberMissingFromUsersFails(c *gc.C) {
	sink := newSink()
	ok := validation.CheckTeamsUsers(sink, checkUsers, []metadata.Team{
		team("t1", member("alice", "owner"), member("mallory", "member")),
	})
	c.Check(ok, jc.IsFalse)
	c.Check(sink.Errors(), jc.DeepEquals,
		[]string{`user "mallory" in team "t1" is not present in the user list`})
}

func (*checkerSuite) TestNonAdminOwnerWarnsOnly(c *gc.C) {
	sink := newSink()
	ok := validation.CheckTeamsUsers(sink, checkUsers, []metadata.Team{
		team("t1", member("bob", "owner")),
	})
	c.Check(ok, jc.IsTrue)
	c.Check(sink.Warnings(), gc.HasLen, 1)
	c.Check(sink.Warnings()[0], gc.Matches, `owner "bob" of team "t1" is not a site admin.*`)
}

func (*checkerSuite) TestFailuresAccumulateAcrossTeams(c *gc.C) {
	sink := newSink()
	ok := validation.CheckTeamsUsers(sink, checkUsers, []metadata.Team{
		team("t1", member("bob", "member")),
		team("t2", member("alice", "owner")),
		team("t3", member("mallory", "member"), member("alice", "owner")),
	})
	c.Check(ok, jc.IsFalse)
	c.Check(sink.Errors(), gc.HasLen, 2)
}

func (*checkerSuite) TestNoTeams(c *gc.C) {
	sink := newSink()
	c.Check(validation.CheckTeamsUsers(sink, checkUsers, nil), jc.IsTrue)
	c.Check(sink.Events(), gc.HasLen, 0)
}
