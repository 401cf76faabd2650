// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package schema_test

import (
	"context"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlproj/internal/config"
	"github.com/canonical/sqlproj/internal/database"
	"github.com/canonical/sqlproj/internal/schema"
)

// Hook up gocheck into the "go test" runner.
func TestSchema(t *testing.T) { TestingT(t) }

type schemaSuite struct{}

var _ = Suite(&schemaSuite{})

func (s *schemaSuite) TestMigrate(c *C) {
	for _, driver := range []string{"sqlite3", "sqlite"} {
		db, err := database.Open(context.Background(), config.Config{Driver: driver})
		c.Assert(err, IsNil)

		version, err := schema.Version(db.PlainDB(), driver)
		c.Assert(err, IsNil)
		c.Assert(version, Equals, uint(0))

		c.Assert(schema.Migrate(db.PlainDB(), driver), IsNil, Commentf("driver %s", driver))
		// Migrating an up to date database does nothing.
		c.Assert(schema.Migrate(db.PlainDB(), driver), IsNil, Commentf("driver %s", driver))

		version, err = schema.Version(db.PlainDB(), driver)
		c.Assert(err, IsNil)
		c.Assert(version, Equals, uint(1))

		_, err = db.PlainDB().Exec(`INSERT INTO post (id, title) VALUES (1, 'x')`)
		c.Assert(err, IsNil)
		c.Assert(db.Close(), IsNil)
	}
}

func (s *schemaSuite) TestUnknownDriver(c *C) {
	db, err := database.Open(context.Background(), config.Config{Driver: "sqlite3"})
	c.Assert(err, IsNil)
	defer db.Close()

	err = schema.Migrate(db.PlainDB(), "oracle")
	c.Assert(err, ErrorMatches, `cannot migrate schema: no migrations for driver "oracle"`)
}
