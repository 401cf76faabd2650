// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package post

import (
	"github.com/canonical/sqlproj/projection"
)

// RecordSchema lists the columns of a post record in select order.
var RecordSchema = projection.MustSchema(
	projection.Int("id"),
	projection.Str("title"),
	projection.Time("created_on"),
	projection.Str("created_by"),
	projection.Time("updated_on"),
	projection.Str("updated_by"),
)

// DTOSchema lists the columns of a post DTO.
var DTOSchema = projection.MustSchema(
	projection.Int("id"),
	projection.Str("title"),
)

// RecordProjector decodes rows of RecordSchema by position.
var RecordProjector = projection.Positional(RecordSchema, recordFromTuple)

// DTOProjector decodes rows of DTOSchema by column alias, so the select list
// may name the columns in any order.
var DTOProjector = projection.ByAlias(DTOSchema, func(t projection.Tuple) PostDTO {
	return NewPostDTO(t.Int64("id"), t.Text("title"))
})

func recordFromTuple(t projection.Tuple) PostRecord {
	audit := NewAuditRecord(
		t.Time("created_on"),
		t.Text("created_by"),
		t.Time("updated_on"),
		t.Text("updated_by"),
	)
	return NewPostRecord(t.Int64("id"), t.Text("title"), audit)
}

// ProjectRecord converts a row of exactly six values, ordered as in
// RecordSchema, into a PostRecord. The first two values are the id and title;
// the remaining four form the audit record.
func ProjectRecord(row projection.Row) (PostRecord, error) {
	return RecordProjector.Project(row)
}
