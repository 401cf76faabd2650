// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package projection

import (
	"math"
	"reflect"
	"strings"
	"time"
)

// timestampLayouts are the text encodings SQLite drivers use for timestamps,
// tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// coerce converts v to the Go representation of kind. The boolean result is
// false when the conversion is not possible.
func coerce(kind Kind, v any) (any, bool) {
	switch kind {
	case Integer:
		return coerceInt(v)
	case String:
		return coerceString(v)
	case Timestamp:
		return coerceTime(v)
	}
	return nil, false
}

func coerceInt(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
			return nil, false
		}
		return int64(f), true
	}
	return nil, false
}

func coerceString(v any) (any, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return nil, false
}

func coerceTime(v any) (any, bool) {
	switch v := v.(type) {
	case time.Time:
		return v, true
	case string:
		return parseTimestamp(v)
	case []byte:
		return parseTimestamp(string(v))
	}
	return nil, false
}

func parseTimestamp(s string) (any, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return nil, false
}
