// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"strings"
)

// A queryPart represents a section of a parsed query. The parsed query is
// represented as a list of queryParts.
type queryPart interface {
	// String returns a string representation of the part for debugging and
	// testing purposes.
	String() string

	// part is a marker method.
	part()
}

// memberAccessor stores information for accessing a keyed Go value. It
// consists of a type name and some value within it to be accessed. For
// example: a field of a struct, or a key of a map.
type memberAccessor struct {
	typeName, memberName string
}

func (ma memberAccessor) String() string {
	return ma.typeName + "." + ma.memberName
}

// inputPart represents a parsed input expression.
type inputPart struct {
	ma  memberAccessor
	raw string
}

func (p *inputPart) String() string {
	return "inputPart[" + p.ma.String() + "]"
}

// Marker function for queryPart.
func (p *inputPart) part() {}

// bypassPart represents a part of the query that is passed to the database
// verbatim.
type bypassPart struct {
	chunk string
}

func (p *bypassPart) String() string {
	return "bypassPart[" + p.chunk + "]"
}

// Marker function for queryPart.
func (p *bypassPart) part() {}

// ParsedExpr is the parsed representation of a query. A query like:
//
//	SELECT p.title FROM post p WHERE p.id = $Post.id
//
// is represented as:
//
//	[bypassPart inputPart]
type ParsedExpr struct {
	parts []queryPart
}

// String returns a textual representation of the ParsedExpr used in tests.
func (pe *ParsedExpr) String() string {
	var out strings.Builder
	out.WriteString("ParsedExpr[")
	for i, p := range pe.parts {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(p.String())
	}
	out.WriteString("]")
	return out.String()
}

// Placeholder is the parameter marker syntax understood by a database driver.
type Placeholder int

const (
	// Question uses "?" for every parameter (SQLite, dqlite).
	Question Placeholder = iota
	// Dollar numbers parameters "$1", "$2", ... (PostgreSQL).
	Dollar
)

func (ph Placeholder) marker(n int) string {
	switch ph {
	case Dollar:
		return fmt.Sprintf("$%d", n+1)
	default:
		return "?"
	}
}
