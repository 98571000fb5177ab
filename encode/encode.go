// Package encode serializes snapshots to and from JSON and YAML.
// Decoded values are normalized so that snapshots compare equal
// regardless of the format they traveled through: all numbers become
// float64 and all objects become map[string]any.
package encode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// JSON renders a snapshot as indented JSON with a trailing newline.
func JSON(snapshot any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromJSON decodes a JSON snapshot.
func FromJSON(d []byte) (any, error) {
	var v any
	if err := json.Unmarshal(d, &v); err != nil {
		return nil, err
	}
	return Normalize(v)
}

// YAML renders a snapshot as YAML.
func YAML(snapshot any) ([]byte, error) {
	return yaml.Marshal(snapshot)
}

// FromYAML decodes a YAML snapshot.
func FromYAML(d []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(d, &v); err != nil {
		return nil, err
	}
	return Normalize(v)
}

// Normalize deep-converts a decoded document to snapshot form:
// map[string]any objects, []any arrays, float64 numbers.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case []any:
		res := make([]any, len(x))
		for i := range x {
			n, err := Normalize(x[i])
			if err != nil {
				return nil, err
			}
			res[i] = n
		}
		return res, nil
	case map[string]any:
		res := make(map[string]any, len(x))
		for k, v := range x {
			n, err := Normalize(v)
			if err != nil {
				return nil, err
			}
			res[k] = n
		}
		return res, nil
	case map[any]any:
		res := make(map[string]any, len(x))
		for k, v := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v (%T)", k, k)
			}
			n, err := Normalize(v)
			if err != nil {
				return nil, err
			}
			res[ks] = n
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot value %T", v)
	}
}
