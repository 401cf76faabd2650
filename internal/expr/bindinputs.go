// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"

	"github.com/canonical/sqlproj/internal/typeinfo"
)

// PrimedQuery contains all concrete values needed to run a query on a
// database.
type PrimedQuery struct {
	tbe    *TypeBoundExpr
	params []any
}

// BindInputs takes the input arguments of a query and returns the
// PrimedQuery ready for use with the database.
func (tbe *TypeBoundExpr) BindInputs(args ...any) (pq *PrimedQuery, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("invalid input parameter: %s", err)
		}
	}()

	typeToValue, err := typeinfo.ValidateInputs(args)
	if err != nil {
		return nil, err
	}
	for t := range typeToValue {
		if !tbe.argTypes[t] {
			return nil, fmt.Errorf("%s not referenced in query", t.Name())
		}
	}

	var params []any
	for _, part := range tbe.parts {
		in, ok := part.(*typedInputPart)
		if !ok {
			continue
		}
		val, omit, err := in.input.LocateParam(typeToValue)
		if err != nil {
			return nil, err
		}
		if omit {
			return nil, fmt.Errorf("%s has omitempty and is zero, it cannot be used as an input", in.input.Desc())
		}
		params = append(params, val)
	}
	return &PrimedQuery{tbe: tbe, params: params}, nil
}

// SQL returns the query text for the given placeholder style.
func (pq *PrimedQuery) SQL(ph Placeholder) string {
	return pq.tbe.SQL(ph)
}

// Params returns the query parameters in placeholder order.
func (pq *PrimedQuery) Params() []any {
	return pq.params
}
