// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package projection

import (
	"fmt"
	"time"
)

// Tuple is a row decoded against a Schema. Every value has already been
// coerced to the kind of its field.
type Tuple struct {
	schema *Schema
	values []any
}

// Decode validates the shape of row against the schema and coerces each value
// in declaration order. It returns a *ShapeMismatchError if row does not hold
// exactly one value per field and a *TypeCoercionError for the first value
// that cannot be coerced.
func (s *Schema) Decode(row Row) (Tuple, error) {
	if len(row) != len(s.fields) {
		return Tuple{}, &ShapeMismatchError{Want: len(s.fields), Got: len(row)}
	}
	values := make([]any, len(s.fields))
	for i, f := range s.fields {
		v, ok := coerce(f.Kind, row[i])
		if !ok {
			return Tuple{}, &TypeCoercionError{Index: i, Field: f.Name, Kind: f.Kind, Value: row[i]}
		}
		values[i] = v
	}
	return Tuple{schema: s, values: values}, nil
}

// DecodeNamed is like Decode but locates each value by its column alias
// rather than its position. columns holds the aliases reported by the
// database, in row order.
func (s *Schema) DecodeNamed(columns []string, row Row) (Tuple, error) {
	if len(columns) != len(row) {
		return Tuple{}, &ShapeMismatchError{Want: len(columns), Got: len(row)}
	}
	if len(row) != len(s.fields) {
		return Tuple{}, &ShapeMismatchError{Want: len(s.fields), Got: len(row)}
	}
	ordered := make(Row, len(s.fields))
	seen := make([]bool, len(s.fields))
	for i, col := range columns {
		pos, ok := s.lookup(col)
		if !ok || seen[pos] {
			return Tuple{}, &ShapeMismatchError{Want: len(s.fields), Got: len(row), Column: col}
		}
		seen[pos] = true
		ordered[pos] = row[i]
	}
	return s.Decode(ordered)
}

// Schema returns the schema the tuple was decoded against.
func (t Tuple) Schema() *Schema {
	return t.schema
}

// Int64 returns the value of the named Integer field.
func (t Tuple) Int64(name string) int64 {
	return t.get(name, Integer).(int64)
}

// Text returns the value of the named String field.
func (t Tuple) Text(name string) string {
	return t.get(name, String).(string)
}

// Time returns the value of the named Timestamp field.
func (t Tuple) Time(name string) time.Time {
	return t.get(name, Timestamp).(time.Time)
}

// get panics when the field is missing or of another kind. Builders are
// written against the schema they decode with, so either case is a bug in
// the caller.
func (t Tuple) get(name string, kind Kind) any {
	if t.schema == nil {
		panic("projection: use of zero Tuple")
	}
	i, ok := t.schema.lookup(name)
	if !ok {
		panic(fmt.Sprintf("projection: no field %q in schema %v", name, t.schema.Names()))
	}
	if f := t.schema.fields[i]; f.Kind != kind {
		panic(fmt.Sprintf("projection: field %q is %s, not %s", f.Name, f.Kind, kind))
	}
	return t.values[i]
}
