package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
)

// ErrInvalidAttribute is returned when an attribute value has no JSON
// representation.
var ErrInvalidAttribute = errors.New("invalid attribute value")

// Attributes stores key-value pairs attached to entities and relationships.
// Values are restricted to the JSON value set: string, bool, nil, Go numeric
// kinds, json.Number, []any and map[string]any (or Attributes), nested to any
// depth. Floats must be finite. JSON is the serialization contract; see
// [Attributes.Validate].
type Attributes map[string]any

// Clone returns a shallow copy. The result is never nil.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	return maps.Clone(a)
}

// Merge copies every key of other into a, overwriting existing keys.
func (a Attributes) Merge(other Attributes) {
	maps.Copy(a, other)
}

// Float returns the numeric value stored under key.
// It reports false when the key is missing or holds a non-numeric value.
func (a Attributes) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// String returns the string value stored under key.
func (a Attributes) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// Validate reports the first key whose value falls outside the JSON value set.
// The error wraps ErrInvalidAttribute.
func (a Attributes) Validate() error {
	for k, v := range a {
		if !validValue(v) {
			return fmt.Errorf("%w: %q has type %T", ErrInvalidAttribute, k, v)
		}
	}
	return nil
}

func validValue(v any) bool {
	switch v := v.(type) {
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return validValue(float64(v))
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case []any:
		for _, e := range v {
			if !validValue(e) {
				return false
			}
		}
		return true
	case []string:
		return true
	case map[string]any:
		return Attributes(v).Validate() == nil
	case Attributes:
		return v.Validate() == nil
	default:
		return false
	}
}
