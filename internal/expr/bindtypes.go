// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/canonical/sqlproj/internal/typeinfo"
)

// typedInputPart is an input expression bound to the Go type it reads from.
type typedInputPart struct {
	input *typeinfo.Input
	raw   string
}

// TypeBoundExpr represents a query bound to concrete Go types. It holds the
// bypass chunks as strings and the input expressions as *typedInputPart, in
// query order.
type TypeBoundExpr struct {
	parts []any
	// argTypes are the types referenced by at least one input expression.
	argTypes map[reflect.Type]bool
}

// BindTypes binds the parsed expression to the types of the samples. Every
// type named in an input expression must be sampled and have the referenced
// member; every sample must be referenced.
func (pe *ParsedExpr) BindTypes(typeSamples ...any) (tbe *TypeBoundExpr, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot prepare statement: %s", err)
		}
	}()

	infos := map[string]*typeinfo.Info{}
	for _, sample := range typeSamples {
		if sample == nil {
			return nil, fmt.Errorf("need valid value, got nil")
		}
		t := reflect.TypeOf(sample)
		if t.Kind() == reflect.Pointer {
			return nil, fmt.Errorf("need non-pointer type, got pointer to %s", t.Elem().Kind())
		}
		info, err := typeinfo.TypeInfo(t)
		if err != nil {
			return nil, err
		}
		if dupe, ok := infos[t.Name()]; ok {
			if dupe.Type == t {
				return nil, fmt.Errorf("found multiple instances of type %q", t.Name())
			}
			return nil, fmt.Errorf("two types found with name %q: %q and %q", t.Name(), dupe.Type.String(), t.String())
		}
		infos[t.Name()] = info
	}

	tbe = &TypeBoundExpr{argTypes: map[reflect.Type]bool{}}
	for _, part := range pe.parts {
		switch p := part.(type) {
		case *bypassPart:
			tbe.parts = append(tbe.parts, p.chunk)
		case *inputPart:
			info, ok := infos[p.ma.typeName]
			if !ok {
				return nil, typeMissingError(p.ma.typeName, infos)
			}
			in, err := info.Input(p.ma.memberName)
			if err != nil {
				return nil, fmt.Errorf("input expression: %s: %s", err, p.raw)
			}
			tbe.argTypes[info.Type] = true
			tbe.parts = append(tbe.parts, &typedInputPart{input: in, raw: p.raw})
		default:
			return nil, fmt.Errorf("internal error: unknown query part type %T", part)
		}
	}

	for name, info := range infos {
		if !tbe.argTypes[info.Type] {
			return nil, fmt.Errorf("type %q not referenced in query", name)
		}
	}
	return tbe, nil
}

// SQL returns the query with every input expression replaced by a
// placeholder in the given style.
func (tbe *TypeBoundExpr) SQL(ph Placeholder) string {
	var sb strings.Builder
	n := 0
	for _, part := range tbe.parts {
		switch p := part.(type) {
		case string:
			sb.WriteString(p)
		case *typedInputPart:
			sb.WriteString(ph.marker(n))
			n++
		}
	}
	return sb.String()
}

// typeMissingError lists the sampled type names when an expression refers to
// one that was not provided.
func typeMissingError(missingType string, infos map[string]*typeinfo.Info) error {
	if len(infos) == 0 {
		return fmt.Errorf("parameter with type %q missing", missingType)
	}
	names := make([]string, 0, len(infos))
	for name := range infos {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("parameter with type %q missing (have %q)", missingType, strings.Join(names, ", "))
}
