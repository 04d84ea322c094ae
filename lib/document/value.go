// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/bureau-foundation/courseware/lib/codec"
)

// Value is a node of a parsed document. The zero Value is null.
type Value struct {
	raw any
}

// Of wraps raw, normalizing numeric and map types to the canonical
// document shapes.
func Of(raw any) Value {
	return Value{raw: normalize(raw)}
}

// Raw returns the underlying representation.
func (v Value) Raw() any {
	return v.raw
}

// IsNull reports whether v is null (or absent).
func (v Value) IsNull() bool {
	return v.raw == nil
}

// IsMap reports whether v is a mapping.
func (v Value) IsMap() bool {
	_, ok := v.raw.(map[string]any)
	return ok
}

// IsList reports whether v is a sequence.
func (v Value) IsList() bool {
	_, ok := v.raw.([]any)
	return ok
}

// Has reports whether v is a mapping containing field. A field that is
// present with a null value is still present.
func (v Value) Has(field string) bool {
	_, ok := v.Get(field)
	return ok
}

// Get returns the value of field and whether it is present.
func (v Value) Get(field string) (Value, bool) {
	fields, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}, false
	}
	raw, ok := fields[field]
	if !ok {
		return Value{}, false
	}
	return Value{raw: raw}, true
}

// Field returns the value of field, or null if absent.
func (v Value) Field(field string) Value {
	value, _ := v.Get(field)
	return value
}

// Keys returns the field names of a mapping in sorted order.
func (v Value) Keys() []string {
	fields, ok := v.raw.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of elements of a sequence or fields of a
// mapping, and 0 for scalars.
func (v Value) Len() int {
	switch raw := v.raw.(type) {
	case []any:
		return len(raw)
	case map[string]any:
		return len(raw)
	default:
		return 0
	}
}

// Index returns element i of a sequence, or null if out of range.
func (v Value) Index(i int) Value {
	items, ok := v.raw.([]any)
	if !ok || i < 0 || i >= len(items) {
		return Value{}
	}
	return Value{raw: items[i]}
}

// List returns the elements of a sequence, or nil for anything else.
func (v Value) List() []Value {
	items, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	values := make([]Value, len(items))
	for i, item := range items {
		values[i] = Value{raw: item}
	}
	return values
}

// AsString returns v as a string.
func (v Value) AsString() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// AsInt returns v as an int. Floats with no fractional part convert.
func (v Value) AsInt() (int, bool) {
	switch raw := v.raw.(type) {
	case int:
		return raw, true
	case float64:
		if raw == math.Trunc(raw) && raw >= math.MinInt && raw <= math.MaxInt {
			return int(raw), true
		}
	}
	return 0, false
}

// AsFloat returns v as a float64. Ints convert.
func (v Value) AsFloat() (float64, bool) {
	switch raw := v.raw.(type) {
	case float64:
		return raw, true
	case int:
		return float64(raw), true
	}
	return 0, false
}

// AsBool returns v as a bool.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Text returns v as a string, or "" if it is not one.
func (v Value) Text() string {
	s, _ := v.AsString()
	return s
}

// With returns a copy of mapping v with field set to value. A non-map
// v is treated as an empty mapping.
func (v Value) With(field string, value any) Value {
	fields, _ := v.raw.(map[string]any)
	copied := make(map[string]any, len(fields)+1)
	for key, item := range fields {
		copied[key] = item
	}
	if wrapped, ok := value.(Value); ok {
		value = wrapped.raw
	}
	copied[field] = normalize(value)
	return Value{raw: copied}
}

// Without returns a copy of mapping v with field removed.
func (v Value) Without(field string) Value {
	fields, ok := v.raw.(map[string]any)
	if !ok {
		return v
	}
	copied := make(map[string]any, len(fields))
	for key, item := range fields {
		if key != field {
			copied[key] = item
		}
	}
	return Value{raw: copied}
}

// MarshalJSON encodes the underlying tree.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// MarshalCBOR encodes the underlying tree with lib/codec.
func (v Value) MarshalCBOR() ([]byte, error) {
	return codec.Marshal(v.raw)
}

// UnmarshalCBOR decodes a tree and normalizes it.
func (v *Value) UnmarshalCBOR(data []byte) error {
	var raw any
	if err := codec.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.raw = normalize(raw)
	return nil
}

// normalize converts decoder-specific shapes into the canonical ones.
func normalize(raw any) any {
	switch value := raw.(type) {
	case nil, string, bool, int, float64:
		return value
	case Value:
		return value.raw
	case int64:
		if value >= math.MinInt && value <= math.MaxInt {
			return int(value)
		}
		return float64(value)
	case int32:
		return int(value)
	case uint64:
		if value <= math.MaxInt {
			return int(value)
		}
		return float64(value)
	case uint:
		if value <= math.MaxInt {
			return int(value)
		}
		return float64(value)
	case float32:
		return float64(value)
	case []byte:
		return string(value)
	case []any:
		items := make([]any, len(value))
		for i, item := range value {
			items[i] = normalize(item)
		}
		return items
	case []string:
		items := make([]any, len(value))
		for i, item := range value {
			items[i] = item
		}
		return items
	case []map[string]any:
		items := make([]any, len(value))
		for i, item := range value {
			items[i] = normalize(item)
		}
		return items
	case map[string]any:
		fields := make(map[string]any, len(value))
		for key, item := range value {
			fields[key] = normalize(item)
		}
		return fields
	case map[any]any:
		fields := make(map[string]any, len(value))
		for key, item := range value {
			fields[fmt.Sprint(key)] = normalize(item)
		}
		return fields
	default:
		return fmt.Sprint(value)
	}
}
