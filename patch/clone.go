package patch

// Clone deep-copies the container structure of a JSON-like value.
// Maps and slices are copied recursively; every other value is carried
// as-is. Callers holding pointer-typed leaves share them across clones,
// which is acceptable under the engine's JSON-like value contract.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	default:
		return v
	}
}
