// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlproj

import (
	"fmt"

	"github.com/canonical/sqlproj/projection"
)

// Transformer converts a result row into a value of type T. columns holds
// the column names reported by the database, in row order.
//
// [projection.Projector] implements Transformer.
type Transformer[T any] interface {
	Transform(columns []string, row projection.Row) (T, error)
}

// TransformerFunc adapts an ordinary function to a [Transformer].
type TransformerFunc[T any] func(columns []string, row projection.Row) (T, error)

// Transform calls f(columns, row).
func (f TransformerFunc[T]) Transform(columns []string, row projection.Row) (T, error) {
	return f(columns, row)
}

// GetAll runs the query and transforms every row. A query without results
// yields an empty slice and no error. The first failing row stops the
// iteration; its error is returned wrapped, so [errors.As] still finds
// projection errors.
func GetAll[T any](q *Query, t Transformer[T]) ([]T, error) {
	results := []T{}
	iter := q.Iter()
	for iter.Next() {
		row, err := iter.Row()
		if err != nil {
			iter.Close()
			return nil, err
		}
		v, err := t.Transform(iter.cols, row)
		if err != nil {
			iter.Close()
			return nil, fmt.Errorf("cannot transform row %d: %w", len(results), err)
		}
		results = append(results, v)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetOne runs the query and transforms its first row. It returns [ErrNoRows]
// if the query has no results.
func GetOne[T any](q *Query, t Transformer[T]) (v T, err error) {
	iter := q.Iter()
	if !iter.Next() {
		err = iter.Close()
		if err == nil {
			err = ErrNoRows
		}
		return v, err
	}
	row, err := iter.Row()
	if err == nil {
		v, err = t.Transform(iter.cols, row)
		if err != nil {
			err = fmt.Errorf("cannot transform row 0: %w", err)
		}
	}
	if cerr := iter.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
