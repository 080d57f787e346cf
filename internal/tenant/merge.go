package tenant

import "encoding/json"

// deepMerge merges override into base recursively and returns a new map.
// Nested maps merge key by key, with override winning where both sides carry
// a leaf; keys absent from override are preserved from base. Arrays and
// every other non-map value replace wholesale rather than concatenating.
// Neither input is mutated.
func deepMerge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if ov, ok := v.(map[string]any); ok {
			if bv, ok := out[k].(map[string]any); ok {
				out[k] = deepMerge(bv, ov)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// toMap converts a config struct to its JSON map form so it can enter the
// merge chain. The config types here always marshal cleanly; a nil map is
// returned if that ever stops being true.
func toMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// fromMap decodes a merged map back into the typed config, dropping keys the
// type does not model. Callers that need the unmodeled keys read them off
// the map before decoding.
func fromMap(m map[string]any, dst any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
