package patch

import (
	"reflect"
	"sort"
)

// Diff computes the structural delta from a to b as an ordered patch of
// add/remove/replace operations. Applying the result to a reconstructs b.
//
// Objects are compared by key set, arrays index-wise. When an array shrinks,
// the trailing removes are emitted highest-index-first so the patch stays
// valid under sequential application. Scalars and mixed-type pairs collapse
// to a single replace at the deepest common path.
func Diff(a, b any) Patch {
	var out Patch
	diffValue("", a, b, &out)
	return out
}

func diffValue(path string, a, b any, out *Patch) {
	if aObj, ok := asObject(a); ok {
		if bObj, ok := asObject(b); ok {
			diffObject(path, aObj, bObj, out)
			return
		}
	}
	if aArr, ok := asArray(a); ok {
		if bArr, ok := asArray(b); ok {
			diffArray(path, aArr, bArr, out)
			return
		}
	}
	if !leafEqual(a, b) {
		*out = append(*out, Op{Kind: OpReplace, Path: path, Value: Clone(b)})
	}
}

func diffObject(path string, a, b map[string]any, out *Patch) {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
		seen[k] = struct{}{}
	}
	for k := range b {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys) // deterministic op order

	for _, k := range keys {
		av, inA := a[k]
		bv, inB := b[k]
		child := joinPointer(path, k)
		switch {
		case inA && !inB:
			*out = append(*out, Op{Kind: OpRemove, Path: child})
		case !inA && inB:
			*out = append(*out, Op{Kind: OpAdd, Path: child, Value: Clone(bv)})
		default:
			diffValue(child, av, bv, out)
		}
	}
}

func diffArray(path string, a, b []any, out *Patch) {
	common := len(a)
	if len(b) < common {
		common = len(b)
	}
	for i := 0; i < common; i++ {
		diffValue(joinIndex(path, i), a[i], b[i], out)
	}
	for i := common; i < len(b); i++ {
		*out = append(*out, Op{Kind: OpAdd, Path: joinIndex(path, i), Value: Clone(b[i])})
	}
	// Highest index first: each remove must not invalidate the next.
	for i := len(a) - 1; i >= common; i-- {
		*out = append(*out, Op{Kind: OpRemove, Path: joinIndex(path, i)})
	}
}

// asObject matches map[string]any without converting other map types;
// values outside the JSON-like shape are treated as opaque leaves.
func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asArray(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// leafEqual compares two values that are not both objects or both arrays.
// Numeric values compare across int/float representations so that a value
// round-tripped through encoding/json still diffs as unchanged.
func leafEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
