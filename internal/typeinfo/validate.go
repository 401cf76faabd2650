// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package typeinfo

import (
	"fmt"
	"reflect"
	"sort"
)

type TypeToValue = map[reflect.Type]reflect.Value

// ValidateInputs takes the raw input arguments from the user and uses
// reflection to check that they are valid. It returns a TypeToValue containing
// the reflect.Value of the input arguments.
func ValidateInputs(args []any) (TypeToValue, error) {
	typeToValue := TypeToValue{}
	for _, arg := range args {
		v := reflect.ValueOf(arg)
		if isInvalidNil(v) {
			return nil, fmt.Errorf("need supported value, got nil")
		}
		v = reflect.Indirect(v)
		t := v.Type()
		switch k := v.Kind(); k {
		case reflect.Map, reflect.Struct:
			if t.Name() == "" {
				return nil, fmt.Errorf("cannot use anonymous %s", k)
			}
		default:
			return nil, fmt.Errorf("need struct or map, got %s", k)
		}
		if _, ok := typeToValue[t]; ok {
			return nil, fmt.Errorf("type %q provided more than once", t.Name())
		}
		typeToValue[t] = v
	}
	return typeToValue, nil
}

func isInvalidNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Pointer, reflect.Map:
		return v.IsNil()
	}
	return false
}

// valueNotFoundError lists the arguments that were provided when the one
// needed is missing.
func valueNotFoundError(typeToValue TypeToValue, missingType reflect.Type) error {
	argNames := []string{}
	for argType := range typeToValue {
		if argType.Name() == missingType.Name() {
			return fmt.Errorf("parameter with type %q missing, have type with same name: %q", missingType.String(), argType.String())
		}
		argNames = append(argNames, argType.Name())
	}
	// Sort for consistent error messages.
	sort.Strings(argNames)
	if len(argNames) == 0 {
		return fmt.Errorf("parameter with type %q missing", missingType.Name())
	}
	return fmt.Errorf("parameter with type %q missing (have %q)", missingType.Name(), argNames)
}
