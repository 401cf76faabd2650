// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package typeinfo

import (
	"fmt"
	"reflect"
)

// Field represents a single tagged field of a struct type.
type Field struct {
	Type reflect.Type

	// Name is the name of the struct field.
	Name string

	// Index of this field in the structure.
	Index int

	// OmitEmpty is true when "omitempty" is
	// a property of the field's "db" tag.
	OmitEmpty bool
}

// Info represents reflected information about a struct or map type.
type Info struct {
	Type reflect.Type

	// TagToField relates tag names to fields. It is nil for maps.
	TagToField map[string]Field

	// Tags holds the tag names in field declaration order.
	Tags []string
}

// Input locates the member named by a tag (for structs) or key (for maps).
func (info *Info) Input(member string) (*Input, error) {
	if info.Type.Kind() == reflect.Map {
		return &Input{argType: info.Type, key: member}, nil
	}
	f, ok := info.TagToField[member]
	if !ok {
		return nil, fmt.Errorf("type %q has no %q db tag", info.Type.Name(), member)
	}
	return &Input{argType: info.Type, tag: member, field: f}, nil
}

// Input specifies where to find a query parameter within the input
// arguments.
type Input struct {
	argType reflect.Type
	// tag and field are set for struct members.
	tag   string
	field Field
	// key is set for map members.
	key string
}

// ArgType returns the type of the argument the value is located in.
func (in *Input) ArgType() reflect.Type {
	return in.argType
}

// Desc returns a natural language description of the input for error
// messages.
func (in *Input) Desc() string {
	if in.argType.Kind() == reflect.Map {
		return fmt.Sprintf("key %q of map %q", in.key, in.argType.Name())
	}
	return fmt.Sprintf("tag %q of struct %q", in.tag, in.argType.Name())
}

// LocateParam finds the argument of the right type in typeToValue and
// returns the referenced value. Struct fields tagged with omitempty that hold
// their zero value are reported with omit set.
func (in *Input) LocateParam(typeToValue TypeToValue) (val any, omit bool, err error) {
	v, ok := typeToValue[in.argType]
	if !ok {
		return nil, false, valueNotFoundError(typeToValue, in.argType)
	}
	if in.argType.Kind() == reflect.Map {
		mv := v.MapIndex(reflect.ValueOf(in.key))
		if !mv.IsValid() {
			return nil, false, fmt.Errorf("map %q does not contain key %q", in.argType.Name(), in.key)
		}
		return mv.Interface(), false, nil
	}
	fv := v.Field(in.field.Index)
	return fv.Interface(), in.field.OmitEmpty && fv.IsZero(), nil
}
