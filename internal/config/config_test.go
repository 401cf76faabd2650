// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlproj/internal/config"
)

// Hook up gocheck into the "go test" runner.
func TestConfig(t *testing.T) { TestingT(t) }

type configSuite struct {
	saved map[string]*string
}

var _ = Suite(&configSuite{})

var envVars = []string{"SQLPROJ_DRIVER", "SQLPROJ_DSN", "SQLPROJ_OTEL_ENDPOINT", "SQLPROJ_SERVICE_NAME"}

func (s *configSuite) SetUpTest(c *C) {
	s.saved = map[string]*string{}
	for _, name := range envVars {
		if v, ok := os.LookupEnv(name); ok {
			s.saved[name] = &v
		} else {
			s.saved[name] = nil
		}
		c.Assert(os.Unsetenv(name), IsNil)
	}
}

func (s *configSuite) TearDownTest(c *C) {
	for name, v := range s.saved {
		if v == nil {
			os.Unsetenv(name)
		} else {
			os.Setenv(name, *v)
		}
	}
}

func writeConfig(c *C, content string) string {
	dir := c.MkDir()
	err := os.WriteFile(filepath.Join(dir, config.FileName+".yaml"), []byte(content), 0o644)
	c.Assert(err, IsNil)
	return dir
}

func (s *configSuite) TestDefaults(c *C) {
	cfg, err := config.Load("")
	c.Assert(err, IsNil)
	c.Assert(cfg, Equals, config.Default())

	// A directory without a config file is not an error.
	cfg, err = config.Load(c.MkDir())
	c.Assert(err, IsNil)
	c.Assert(cfg, Equals, config.Default())
}

func (s *configSuite) TestFile(c *C) {
	dir := writeConfig(c, "driver: pgx\ndsn: postgres://localhost/posts\n")
	cfg, err := config.Load(dir)
	c.Assert(err, IsNil)
	c.Assert(cfg, Equals, config.Config{
		Driver:      "pgx",
		DSN:         "postgres://localhost/posts",
		ServiceName: "sqlproj",
	})
}

func (s *configSuite) TestEnvOverridesFile(c *C) {
	dir := writeConfig(c, "driver: pgx\notel_endpoint: http://collector:4318\n")
	os.Setenv("SQLPROJ_DRIVER", "sqlite")
	os.Setenv("SQLPROJ_SERVICE_NAME", "demo")

	cfg, err := config.Load(dir)
	c.Assert(err, IsNil)
	c.Assert(cfg, Equals, config.Config{
		Driver:       "sqlite",
		OTELEndpoint: "http://collector:4318",
		ServiceName:  "demo",
	})
}

func (s *configSuite) TestErrors(c *C) {
	dir := writeConfig(c, "driver: [unterminated\n")
	_, err := config.Load(dir)
	c.Assert(err, ErrorMatches, "cannot read config: .*")

	dir = writeConfig(c, "driver: \"\"\n")
	_, err = config.Load(dir)
	c.Assert(err, ErrorMatches, "no database driver configured")
}
