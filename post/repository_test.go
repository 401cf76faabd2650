// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package post_test

import (
	"context"
	"errors"
	"os"
	"time"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlproj"
	"github.com/canonical/sqlproj/internal/config"
	"github.com/canonical/sqlproj/internal/database"
	"github.com/canonical/sqlproj/internal/schema"
	"github.com/canonical/sqlproj/post"
)

// repositorySuite runs against the driver it is registered with. DSN is
// empty for in-memory SQLite databases.
type repositorySuite struct {
	driver string
	dsn    string
	db     *database.DB
	repo   *post.Repository
}

var _ = Suite(&repositorySuite{driver: "sqlite3"})
var _ = Suite(&repositorySuite{driver: "sqlite"})
var _ = Suite(&repositorySuite{driver: "pgx", dsn: os.Getenv("SQLPROJ_TEST_PG_DSN")})

var scenario = post.Post{
	ID:        1,
	Title:     "High-Performance Java Persistence",
	CreatedOn: createdOn,
	CreatedBy: "Vlad Mihalcea",
	UpdatedOn: time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC),
	UpdatedBy: "Vlad Mihalcea",
}

func (s *repositorySuite) SetUpSuite(c *C) {
	if s.driver == "pgx" && s.dsn == "" {
		c.Skip("SQLPROJ_TEST_PG_DSN not set")
	}
}

func (s *repositorySuite) SetUpTest(c *C) {
	db, err := database.Open(context.Background(), config.Config{Driver: s.driver, DSN: s.dsn})
	c.Assert(err, IsNil)
	c.Assert(schema.Migrate(db.PlainDB(), s.driver), IsNil)
	// A persistent server keeps rows from earlier tests.
	_, err = db.PlainDB().Exec("DELETE FROM post")
	c.Assert(err, IsNil)
	s.db = db
	s.repo = post.NewRepository(db.DB)
}

func (s *repositorySuite) TearDownTest(c *C) {
	c.Assert(s.db.Close(), IsNil)
}

func (s *repositorySuite) save(c *C, posts ...post.Post) {
	ctx := context.Background()
	err := s.db.Transaction(ctx, func(ctx context.Context, tx *sqlproj.TX) error {
		for _, p := range posts {
			if err := s.repo.Save(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	c.Assert(err, IsNil)
}

func (s *repositorySuite) TestScenario(c *C) {
	s.save(c, scenario)
	ctx := context.Background()

	err := s.db.Transaction(ctx, func(ctx context.Context, tx *sqlproj.TX) error {
		for _, variant := range []post.QueryVariant{post.AliasQuery, post.NativeQuery} {
			dtos, err := s.repo.DTOs(ctx, tx, variant)
			c.Assert(err, IsNil, Commentf("%s query", variant))
			c.Assert(dtos, DeepEquals, []post.PostDTO{post.NewPostDTO(1, "High-Performance Java Persistence")})
		}

		records, err := s.repo.Records(ctx, tx)
		c.Assert(err, IsNil)
		c.Assert(records, HasLen, 1)
		want := post.NewPostRecord(1, "High-Performance Java Persistence",
			post.NewAuditRecord(createdOn, "Vlad Mihalcea", scenario.UpdatedOn, "Vlad Mihalcea"))
		c.Assert(records[0].Equal(want), Equals, true, Commentf("got %+v", records[0]))
		return nil
	})
	c.Assert(err, IsNil)
}

func (s *repositorySuite) TestOrdering(c *C) {
	second := scenario
	second.ID, second.Title = 2, "Hypersistence Optimizer"
	s.save(c, second, scenario)

	dtos, err := s.repo.DTOs(context.Background(), nil, post.AliasQuery)
	c.Assert(err, IsNil)
	c.Assert(dtos, DeepEquals, []post.PostDTO{
		post.NewPostDTO(1, "High-Performance Java Persistence"),
		post.NewPostDTO(2, "Hypersistence Optimizer"),
	})
}

func (s *repositorySuite) TestEmptyTable(c *C) {
	ctx := context.Background()
	records, err := s.repo.Records(ctx, nil)
	c.Assert(err, IsNil)
	c.Assert(records, NotNil)
	c.Assert(records, HasLen, 0)

	dtos, err := s.repo.DTOs(ctx, nil, post.NativeQuery)
	c.Assert(err, IsNil)
	c.Assert(dtos, HasLen, 0)
}

func (s *repositorySuite) TestFind(c *C) {
	s.save(c, scenario)
	ctx := context.Background()

	record, err := s.repo.Find(ctx, nil, 1)
	c.Assert(err, IsNil)
	c.Assert(record.Audit().CreatedOn().Equal(createdOn), Equals, true)

	_, err = s.repo.Find(ctx, nil, 2)
	c.Assert(errors.Is(err, sqlproj.ErrNoRows), Equals, true)
	c.Assert(err, ErrorMatches, "cannot find post 2: sql: no rows in result set")
}

func (s *repositorySuite) TestRollbackOnError(c *C) {
	ctx := context.Background()
	failed := errors.New("failed after save")
	err := s.db.Transaction(ctx, func(ctx context.Context, tx *sqlproj.TX) error {
		c.Assert(s.repo.Save(ctx, tx, scenario), IsNil)
		return failed
	})
	c.Assert(err, Equals, failed)

	records, err := s.repo.Records(ctx, nil)
	c.Assert(err, IsNil)
	c.Assert(records, HasLen, 0)
}

func (s *repositorySuite) TestDuplicateSave(c *C) {
	s.save(c, scenario)
	err := s.repo.Save(context.Background(), nil, scenario)
	c.Assert(err, ErrorMatches, "cannot save post 1: .*")
}

func (s *repositorySuite) TestUnknownVariant(c *C) {
	_, err := s.repo.DTOs(context.Background(), nil, post.QueryVariant(9))
	c.Assert(err, ErrorMatches, `unknown query variant QueryVariant\(9\)`)
}
