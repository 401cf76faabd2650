// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package projection

import (
	"fmt"
	"strings"
)

// Row is an ordered sequence of column values produced by a query. Position i
// holds the value of the i-th column in the select list.
type Row []any

// Kind is the type a column value is coerced to.
type Kind int

const (
	Integer Kind = iota + 1
	String
	Timestamp
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case String:
		return "string"
	case Timestamp:
		return "timestamp"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field is a single named, typed slot in a Schema.
type Field struct {
	Name string
	Kind Kind
}

// Int returns an Integer field.
func Int(name string) Field {
	return Field{Name: name, Kind: Integer}
}

// Str returns a String field.
func Str(name string) Field {
	return Field{Name: name, Kind: String}
}

// Time returns a Timestamp field.
func Time(name string) Field {
	return Field{Name: name, Kind: Timestamp}
}

// Schema is the ordered list of fields a row must carry. A Schema is
// immutable once built and safe for concurrent use.
type Schema struct {
	fields []Field
	// index maps the normalised field name to its position.
	index map[string]int
}

// NewSchema builds a Schema from fields given in select-list order. Field
// names must be non-empty and unique, ignoring case.
func NewSchema(fields ...Field) (s *Schema, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot build schema: %w", err)
		}
	}()

	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields")
	}
	s = &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d has no name", i)
		}
		switch f.Kind {
		case Integer, String, Timestamp:
		default:
			return nil, fmt.Errorf("field %q has unknown %s", f.Name, f.Kind)
		}
		key := normaliseName(f.Name)
		if _, ok := s.index[key]; ok {
			return nil, fmt.Errorf("field %q declared more than once", f.Name)
		}
		s.index[key] = i
		s.fields[i] = f
	}
	return s, nil
}

// MustSchema is the same as [NewSchema] except that it panics on error.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of fields, which is also the exact row length the
// schema accepts.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the schema fields in declaration order.
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// lookup returns the position of the named field.
func (s *Schema) lookup(name string) (int, bool) {
	i, ok := s.index[normaliseName(name)]
	return i, ok
}

// normaliseName turns a column alias as reported by a driver into the form
// used to match schema fields. Quotes are removed, a table qualifier is
// dropped and case is folded.
func normaliseName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 && !isQuoted(name) {
		name = name[i+1:]
	}
	name = unquote(name)
	return strings.ToLower(name)
}

func isQuoted(name string) bool {
	if len(name) < 2 {
		return false
	}
	switch name[0] {
	case '"':
		return name[len(name)-1] == '"'
	case '`':
		return name[len(name)-1] == '`'
	case '[':
		return name[len(name)-1] == ']'
	}
	return false
}

func unquote(name string) string {
	if isQuoted(name) {
		return name[1 : len(name)-1]
	}
	return name
}
