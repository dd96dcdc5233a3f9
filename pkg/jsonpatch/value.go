package jsonpatch

import (
	"encoding/json"
	"reflect"
)

// Normalize converts an arbitrary Go value into its JSON-shaped form
// (map[string]any, []any, string, float64, bool, nil) by round-tripping
// through encoding/json. Values that are already JSON-shaped come back
// structurally equal.
func Normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal reports structural equality of two JSON-shaped values.
func Equal(a, b any) bool {
	// Fast path for scalars, mirroring decoded JSON types.
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !Equal(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	// Non-normalized inputs (e.g. ints from hand-built fixtures).
	return reflect.DeepEqual(a, b)
}

// deepCopy returns an independent copy of a JSON-shaped value.
// Scalars are immutable and returned as-is.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = deepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = deepCopy(vv)
		}
		return out
	default:
		return v
	}
}
