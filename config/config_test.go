// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config_test

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/cml-tools/teammigrate/config"
)

type configSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&configSuite{})

func (s *configSuite) writeProfile(c *gc.C, content string) string {
	path := filepath.Join(c.MkDir(), "export.ini")
	err := os.WriteFile(path, []byte(content), 0600)
	c.Assert(err, jc.ErrorIsNil)
	return path
}

const validProfile = `
url = https://src.example.com/
username = site-admin
apiv1_key = sekrit
output_dir = /tmp/run1
ca_path =
`

func (s *configSuite) TestReadValid(c *gc.C) {
	settings, err := config.Read(s.writeProfile(c, validProfile))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(settings.Host, gc.Equals, "https://src.example.com")
	c.Check(settings.Username, gc.Equals, "site-admin")
	c.Check(settings.APIKey, gc.Equals, "sekrit")
	c.Check(settings.OutputDir, gc.Equals, "/tmp/run1")
	c.Check(settings.CAPath, gc.Equals, "")
	c.Check(settings.OwnerConflict, gc.Equals, config.DemoteExtraOwners)
}

func (s *configSuite) TestReadMissingKey(c *gc.C) {
	path := s.writeProfile(c, `
url = https://src.example.com
username = site-admin
output_dir = /tmp/run1
`)
	_, err := config.Read(path)
	c.Check(err, jc.ErrorIs, errors.NotValid)
	c.Check(err, gc.ErrorMatches, `.*missing "apiv1_key".*`)
}

func (s *configSuite) TestReadMissingFile(c *gc.C) {
	_, err := config.Read(filepath.Join(c.MkDir(), "absent.ini"))
	c.Check(err, gc.NotNil)
}

func (s *configSuite) TestOwnerConflictPolicy(c *gc.C) {
	settings, err := config.Read(s.writeProfile(c, validProfile+"owner_conflict = fail\n"))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(settings.OwnerConflict, gc.Equals, config.FailOnExtraOwners)
}

func (s *configSuite) TestOwnerConflictPolicyInvalid(c *gc.C) {
	_, err := config.Read(s.writeProfile(c, validProfile+"owner_conflict = shrug\n"))
	c.Check(err, jc.ErrorIs, errors.NotValid)
}

func (s *configSuite) TestRelativeOutputDirResolved(c *gc.C) {
	settings, err := config.Read(s.writeProfile(c, `
url = https://src.example.com
username = site-admin
apiv1_key = sekrit
output_dir = run1
`))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(filepath.IsAbs(settings.OutputDir), jc.IsTrue)
}
