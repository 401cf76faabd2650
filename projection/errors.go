// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package projection

import (
	"fmt"
)

// TypeCoercionError is returned when a value is present in a row but cannot
// be coerced to the kind its field declares.
type TypeCoercionError struct {
	// Index is the position of the value in the row.
	Index int
	Field string
	Kind  Kind
	Value any
}

func (e *TypeCoercionError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("cannot coerce column %d (%q) to %s: got NULL", e.Index, e.Field, e.Kind)
	}
	return fmt.Sprintf("cannot coerce column %d (%q) to %s: got %T %v", e.Index, e.Field, e.Kind, e.Value, e.Value)
}

// ShapeMismatchError is returned when a row does not have the shape the schema
// expects: it is too short, too long, or one of its column aliases does not
// name a schema field.
type ShapeMismatchError struct {
	Want int
	Got  int
	// Column is set when the row length matched but an alias did not.
	Column string
}

func (e *ShapeMismatchError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row shape mismatch: column %q does not match a field", e.Column)
	}
	return fmt.Sprintf("row shape mismatch: expected %d values, got %d", e.Want, e.Got)
}
