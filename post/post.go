// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package post

import (
	"time"
)

// Post is the persisted entity. Its db tags name the columns of the post
// table and are used by the input expressions of the insert.
type Post struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	CreatedOn time.Time `db:"created_on"`
	CreatedBy string    `db:"created_by"`
	UpdatedOn time.Time `db:"updated_on"`
	UpdatedBy string    `db:"updated_by"`
}

// PostDTO is the identifier and title of a post.
type PostDTO struct {
	id    int64
	title string
}

func NewPostDTO(id int64, title string) PostDTO {
	return PostDTO{id: id, title: title}
}

func (d PostDTO) ID() int64 {
	return d.id
}

func (d PostDTO) Title() string {
	return d.title
}

// AuditRecord holds who created and last updated a post, and when.
type AuditRecord struct {
	createdOn time.Time
	createdBy string
	updatedOn time.Time
	updatedBy string
}

func NewAuditRecord(createdOn time.Time, createdBy string, updatedOn time.Time, updatedBy string) AuditRecord {
	return AuditRecord{
		createdOn: createdOn,
		createdBy: createdBy,
		updatedOn: updatedOn,
		updatedBy: updatedBy,
	}
}

func (a AuditRecord) CreatedOn() time.Time { return a.createdOn }
func (a AuditRecord) CreatedBy() string    { return a.createdBy }
func (a AuditRecord) UpdatedOn() time.Time { return a.updatedOn }
func (a AuditRecord) UpdatedBy() string    { return a.updatedBy }

// Equal reports whether a and b hold the same values. Timestamps are
// compared as instants.
func (a AuditRecord) Equal(b AuditRecord) bool {
	return a.createdOn.Equal(b.createdOn) && a.createdBy == b.createdBy &&
		a.updatedOn.Equal(b.updatedOn) && a.updatedBy == b.updatedBy
}

// PostRecord is an immutable view of a stored post.
type PostRecord struct {
	id    int64
	title string
	audit AuditRecord
}

func NewPostRecord(id int64, title string, audit AuditRecord) PostRecord {
	return PostRecord{id: id, title: title, audit: audit}
}

func (r PostRecord) ID() int64          { return r.id }
func (r PostRecord) Title() string      { return r.title }
func (r PostRecord) Audit() AuditRecord { return r.audit }

// Equal reports whether r and o hold the same values.
func (r PostRecord) Equal(o PostRecord) bool {
	return r.id == o.id && r.title == o.title && r.audit.Equal(o.audit)
}
