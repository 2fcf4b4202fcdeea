// Package canon provides a canonical JSON encoding used to fingerprint
// query arguments into stable cache keys: object keys are sorted,
// NaN/±Inf are rejected outright (they have no canonical JSON form), and
// both an absent field and an explicit nil serialize to "null" so a
// cache key is stable across Go's zero-value/omitted-field ambiguity.
// No example in the pack imports a canonical-JSON library for this; the
// spec leaves the exact encoding as an implementer decision.
package canon

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNotCanonicalizable is returned for values with no canonical form
// (NaN, +Inf, -Inf, or anything containing them).
var ErrNotCanonicalizable = errors.New("canon: value is not canonicalizable (contains NaN or Inf)")

// Encode produces the canonical JSON encoding of v.
func Encode(v any) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// Fingerprint canonically encodes v and returns it as a string, suitable
// for use as a cache-key component.
func Fingerprint(v any) (string, error) {
	b, err := Encode(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, ErrNotCanonicalizable
		}
		return t, nil
	case float32:
		return normalize(float64(t))
	case map[string]any:
		return normalizeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		// Round-trip through encoding/json to reach a value built only
		// from the types handled above (structs, maps with non-string
		// keys via json tags, etc.).
		buf, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("canon: %w", err)
		}
		var generic any
		if err := json.Unmarshal(buf, &generic); err != nil {
			return nil, fmt.Errorf("canon: %w", err)
		}
		if _, same := generic.(map[string]any); same {
			return normalize(generic)
		}
		if _, same := generic.([]any); same {
			return normalize(generic)
		}
		if f, isFloat := generic.(float64); isFloat {
			return normalize(f)
		}
		return generic, nil
	}
}

// sortedMap preserves key order via MarshalJSON so json.Marshal emits
// keys sorted lexicographically instead of encoding/json's unordered
// map iteration.
type sortedMap struct {
	keys   []string
	values map[string]any
}

func (m sortedMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

func normalizeMap(m map[string]any) (any, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make(map[string]any, len(m))
	for _, k := range keys {
		n, err := normalize(m[k])
		if err != nil {
			return nil, err
		}
		values[k] = n
	}
	return sortedMap{keys: keys, values: values}, nil
}
