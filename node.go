package schemaguard

import (
	"encoding/json"
	"math/big"
	"reflect"
	"sort"
)

// Kind classifies a decoded schema node.
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// KindOf reports the JSON kind of a node produced by the registry decoders
// (map[string]any, []any, string, bool, nil and the usual Go number types).
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	case string:
		return KindString
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return KindNumber
	default:
		return KindUnknown
	}
}

// ScalarEqual compares two leaves. Numbers compare by value regardless of
// their Go representation, so 1 (int64 from YAML) equals 1.0 (float64).
// Containers fall back to deep equality.
func ScalarEqual(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	if ka == KindNumber {
		ra, okA := toRat(a)
		rb, okB := toRat(b)
		if !okA || !okB {
			return false
		}
		return ra.Cmp(rb) == 0
	}
	switch ka {
	case KindObject, KindArray, KindUnknown:
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func toRat(v any) (*big.Rat, bool) {
	r := new(big.Rat)
	switch n := v.(type) {
	case int:
		return r.SetInt64(int64(n)), true
	case int8:
		return r.SetInt64(int64(n)), true
	case int16:
		return r.SetInt64(int64(n)), true
	case int32:
		return r.SetInt64(int64(n)), true
	case int64:
		return r.SetInt64(n), true
	case uint:
		return r.SetUint64(uint64(n)), true
	case uint8:
		return r.SetUint64(uint64(n)), true
	case uint16:
		return r.SetUint64(uint64(n)), true
	case uint32:
		return r.SetUint64(uint64(n)), true
	case uint64:
		return r.SetUint64(n), true
	case float32:
		out := r.SetFloat64(float64(n))
		return out, out != nil
	case float64:
		// SetFloat64 returns nil for NaN and infinities.
		out := r.SetFloat64(n)
		return out, out != nil
	case json.Number:
		return r.SetString(string(n))
	}
	return nil, false
}

// Object returns v as an object node.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Properties returns the `properties` mapping of a node, or nil.
func Properties(node any) map[string]any {
	m, ok := Object(node)
	if !ok {
		return nil
	}
	props, _ := m["properties"].(map[string]any)
	return props
}

// AllOf returns the `allOf` members of a node, or nil.
func AllOf(node any) []any {
	m, ok := Object(node)
	if !ok {
		return nil
	}
	all, _ := m["allOf"].([]any)
	return all
}

// StringList converts a decoded list of names. Non-string members are dropped;
// ok is false when v is not a list at all.
func StringList(v any) (names []string, ok bool) {
	arr, ok := v.([]any)
	if !ok {
		if ss, isStrings := v.([]string); isStrings {
			return append([]string(nil), ss...), true
		}
		return nil, false
	}
	names = make([]string, 0, len(arr))
	for _, it := range arr {
		if s, isString := it.(string); isString {
			names = append(names, s)
		}
	}
	return names, true
}

// SortedKeys returns the keys of m in lexical order so that walks, and
// therefore the first reported violation, are deterministic.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
