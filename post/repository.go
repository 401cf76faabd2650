// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package post

import (
	"context"
	"fmt"

	"github.com/canonical/sqlproj"
	"github.com/canonical/sqlproj/projection"
)

// QueryVariant selects how the DTO query names its columns.
type QueryVariant int

const (
	// AliasQuery names the columns with bare aliases.
	AliasQuery QueryVariant = iota
	// NativeQuery names the columns with quoted identifiers.
	NativeQuery
)

func (v QueryVariant) String() string {
	switch v {
	case AliasQuery:
		return "alias"
	case NativeQuery:
		return "native"
	}
	return fmt.Sprintf("QueryVariant(%d)", int(v))
}

var insertPost = sqlproj.MustPrepare(`
INSERT INTO post (id, title, created_on, created_by, updated_on, updated_by)
VALUES ($Post.id, $Post.title, $Post.created_on, $Post.created_by, $Post.updated_on, $Post.updated_by)`,
	Post{},
)

var selectDTOs = map[QueryVariant]*sqlproj.Statement{
	AliasQuery:  sqlproj.MustPrepare(`SELECT p.id AS id, p.title AS title FROM post p ORDER BY p.id`),
	NativeQuery: sqlproj.MustPrepare(`SELECT p.id AS "id", p.title AS "title" FROM post p ORDER BY p.id`),
}

const recordColumns = `p.id, p.title, p.created_on, p.created_by, p.updated_on, p.updated_by`

var selectRecords = sqlproj.MustPrepare(`SELECT ` + recordColumns + ` FROM post p ORDER BY p.id`)

var selectRecord = sqlproj.MustPrepare(`SELECT `+recordColumns+` FROM post p WHERE p.id = $Post.id`, Post{})

// Repository reads and writes posts. Every method runs on tx when it is not
// nil, and directly on the database otherwise.
type Repository struct {
	db *sqlproj.DB
}

func NewRepository(db *sqlproj.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) query(ctx context.Context, tx *sqlproj.TX, s *sqlproj.Statement, args ...any) *sqlproj.Query {
	if tx != nil {
		return tx.Query(ctx, s, args...)
	}
	return r.db.Query(ctx, s, args...)
}

// Save inserts p.
func (r *Repository) Save(ctx context.Context, tx *sqlproj.TX, p Post) error {
	if err := r.query(ctx, tx, insertPost, p).Run(); err != nil {
		return fmt.Errorf("cannot save post %d: %w", p.ID, err)
	}
	return nil
}

// DTOs returns the id and title of every post, ordered by id.
func (r *Repository) DTOs(ctx context.Context, tx *sqlproj.TX, variant QueryVariant) ([]PostDTO, error) {
	stmt, ok := selectDTOs[variant]
	if !ok {
		return nil, fmt.Errorf("unknown query variant %s", variant)
	}
	dtos, err := sqlproj.GetAll[PostDTO](r.query(ctx, tx, stmt), DTOProjector)
	if err != nil {
		return nil, fmt.Errorf("cannot list posts (%s query): %w", variant, err)
	}
	return dtos, nil
}

// Records returns every post with its audit record, ordered by id.
func (r *Repository) Records(ctx context.Context, tx *sqlproj.TX) ([]PostRecord, error) {
	records, err := sqlproj.GetAll(r.query(ctx, tx, selectRecords), sqlproj.TransformerFunc[PostRecord](
		func(_ []string, row projection.Row) (PostRecord, error) {
			return ProjectRecord(row)
		}))
	if err != nil {
		return nil, fmt.Errorf("cannot list post records: %w", err)
	}
	return records, nil
}

// Find returns the record of the post with the given id, or an error
// matching sqlproj.ErrNoRows if there is none.
func (r *Repository) Find(ctx context.Context, tx *sqlproj.TX, id int64) (PostRecord, error) {
	record, err := sqlproj.GetOne[PostRecord](r.query(ctx, tx, selectRecord, Post{ID: id}), RecordProjector)
	if err != nil {
		return PostRecord{}, fmt.Errorf("cannot find post %d: %w", id, err)
	}
	return record, nil
}
