// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package projection

import (
	"fmt"
)

// Projector turns rows into values of type T. It decodes each row against its
// schema and hands the resulting Tuple to a constructor. A Projector holds no
// mutable state and can be shared between goroutines.
type Projector[T any] struct {
	schema *Schema
	build  func(Tuple) T
	// byAlias selects DecodeNamed in Transform.
	byAlias bool
}

// Positional returns a Projector that reads values by their position in the
// row.
func Positional[T any](schema *Schema, build func(Tuple) T) *Projector[T] {
	return newProjector(schema, build, false)
}

// ByAlias returns a Projector that, when used as a result transformer, matches
// column aliases to schema field names. Project still decodes positionally
// since a bare Row carries no aliases.
func ByAlias[T any](schema *Schema, build func(Tuple) T) *Projector[T] {
	return newProjector(schema, build, true)
}

func newProjector[T any](schema *Schema, build func(Tuple) T, byAlias bool) *Projector[T] {
	if schema == nil {
		panic("projection: nil schema")
	}
	if build == nil {
		panic("projection: nil build function")
	}
	return &Projector[T]{schema: schema, build: build, byAlias: byAlias}
}

// Schema returns the schema rows are decoded against.
func (p *Projector[T]) Schema() *Schema {
	return p.schema
}

// Project converts a single row. On error the zero T is returned.
func (p *Projector[T]) Project(row Row) (T, error) {
	t, err := p.schema.Decode(row)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.build(t), nil
}

// Transform converts a row together with the column aliases reported for it.
func (p *Projector[T]) Transform(columns []string, row Row) (T, error) {
	if !p.byAlias {
		return p.Project(row)
	}
	t, err := p.schema.DecodeNamed(columns, row)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.build(t), nil
}

// ProjectAll converts every row, stopping at the first failure. An empty
// input yields an empty, non-nil result.
func (p *Projector[T]) ProjectAll(rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		v, err := p.Project(row)
		if err != nil {
			return nil, fmt.Errorf("cannot project row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
