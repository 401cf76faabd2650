// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package typeinfo

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var cacheMutex sync.RWMutex
var cache = make(map[reflect.Type]*Info)

// GetTypeInfo returns the Info of the type of value, generating and caching it
// as required. Pointers are dereferenced.
func GetTypeInfo(value any) (*Info, error) {
	if value == (any)(nil) {
		return nil, fmt.Errorf("cannot reflect nil value")
	}
	return TypeInfo(reflect.TypeOf(value))
}

// TypeInfo returns the Info of t, generating and caching it as required.
func TypeInfo(t reflect.Type) (*Info, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cacheMutex.RLock()
	info, found := cache[t]
	cacheMutex.RUnlock()
	if found {
		return info, nil
	}

	info, err := generate(t)
	if err != nil {
		return nil, err
	}

	cacheMutex.Lock()
	cache[t] = info
	cacheMutex.Unlock()

	return info, nil
}

// generate produces the reflection information for t. Only named structs and
// named maps with string keys are supported.
func generate(t reflect.Type) (*Info, error) {
	if t.Name() == "" {
		return nil, fmt.Errorf("cannot use anonymous %s", t.Kind())
	}

	switch t.Kind() {
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map type %q must have string keys, got %s", t.Name(), t.Key().Kind())
		}
		return &Info{Type: t}, nil
	case reflect.Struct:
	default:
		return nil, fmt.Errorf("need struct or map type, got %s", t.Kind())
	}

	info := Info{
		Type:       t,
		TagToField: make(map[string]Field),
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		// Fields without a "db" tag are outside of our remit.
		tag := field.Tag.Get("db")
		if tag == "" {
			continue
		}
		if !field.IsExported() {
			return nil, fmt.Errorf("field %q of struct %q with db tag must be exported", field.Name, t.Name())
		}
		tag, omitEmpty, err := parseTag(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot parse tag for field %s.%s", t.Name(), field.Name)
		}
		if dupe, ok := info.TagToField[tag]; ok {
			return nil, fmt.Errorf("db tag %q appears in both field %q and field %q of struct %q", tag, dupe.Name, field.Name, t.Name())
		}
		info.TagToField[tag] = Field{
			Name:      field.Name,
			Index:     i,
			OmitEmpty: omitEmpty,
			Type:      field.Type,
		}
		info.Tags = append(info.Tags, tag)
	}

	return &info, nil
}

// This expression should be aligned with the bytes we allow in isNameChar in
// the parser.
var validColNameRx = regexp.MustCompile(`^([a-zA-Z_])+([a-zA-Z_0-9])*$`)

// parseTag parses the input tag string and returns its
// name and whether it contains the "omitempty" option.
func parseTag(tag string) (string, bool, error) {
	options := strings.Split(tag, ",")

	var omitEmpty bool
	// Refuse to parse if there are more than 2 items.
	if len(options) > 2 {
		return "", false, errors.New("too many options in 'db' tag")
	}
	if len(options) == 2 {
		if strings.ToLower(options[1]) != "omitempty" {
			return "", false, errors.Errorf("unexpected tag value %q", options[1])
		}
		omitEmpty = true
	}

	name := options[0]
	if len(name) == 0 {
		return "", false, errors.New("empty db tag")
	}

	if !validColNameRx.MatchString(name) {
		return "", false, errors.Errorf("invalid column name in 'db' tag: %q", name)
	}

	return name, omitEmpty, nil
}
