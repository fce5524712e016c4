package pongo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// convertToContext turns render data into a pongo2 context. Maps are copied
// with trimmed keys and their values left untouched, so services and helper
// functions passed as params stay callable. Any other value is flattened
// through its JSON form.
func convertToContext(data any) (pongo2.Context, error) {
	var in map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		in = v
	case map[string]any:
		in = v
	default:
		decoded, err := jsonToMap(v)
		if err != nil {
			return nil, err
		}
		in = decoded
	}

	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if nested, ok := value.(pongo2.Context); ok {
			value = map[string]any(nested)
		}
		out[key] = value
	}
	return out, nil
}

func jsonToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("data must encode to a JSON object: %w", err)
	}
	return out, nil
}
