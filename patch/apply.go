package patch

import (
	"fmt"
)

// Apply replays a patch against doc and returns the resulting document.
// The input document is never modified: containers along every touched
// path are cloned before mutation. An error on any op aborts the whole
// application; the caller's document is left intact either way.
func Apply(doc any, p Patch) (any, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := Clone(doc)
	for i, op := range p {
		var err error
		out, err = applyOp(out, op)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s %s): %w", i, op.Kind, op.Path, err)
		}
	}
	return out, nil
}

func applyOp(doc any, op Op) (any, error) {
	switch op.Kind {
	case OpAdd:
		return setPath(doc, op.Path, Clone(op.Value), true)
	case OpReplace:
		return setPath(doc, op.Path, Clone(op.Value), false)
	case OpRemove:
		doc, _, err := removePath(doc, op.Path)
		return doc, err
	case OpMove:
		doc, moved, err := removePath(doc, op.From)
		if err != nil {
			return nil, err
		}
		return setPath(doc, op.Path, moved, true)
	case OpCopy:
		v, err := getPath(doc, op.From)
		if err != nil {
			return nil, err
		}
		return setPath(doc, op.Path, Clone(v), true)
	case OpTest:
		v, err := getPath(doc, op.Path)
		if err != nil {
			return nil, err
		}
		if !valueEqual(v, op.Value) {
			return nil, fmt.Errorf("test failed: have %v, want %v", v, op.Value)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unknown op kind %q", op.Kind)
	}
}

// Get resolves a JSON pointer against doc and returns the referenced
// value. The empty pointer returns doc itself.
func Get(doc any, ptr string) (any, error) {
	return getPath(doc, ptr)
}

// getPath resolves a JSON pointer to the value it references.
func getPath(doc any, ptr string) (any, error) {
	tokens, err := splitPointer(ptr)
	if err != nil {
		return nil, err
	}
	cur := doc
	for _, tok := range tokens {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[tok]
			if !ok {
				return nil, fmt.Errorf("missing key %q", tok)
			}
			cur = v
		case []any:
			i, err := arrayIndex(tok, len(c), false)
			if err != nil {
				return nil, err
			}
			cur = c[i]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %q", cur, tok)
		}
	}
	return cur, nil
}

// setPath writes value at ptr. insert controls array semantics: true
// shifts elements right (add), false overwrites in place (replace).
// The empty pointer replaces the whole document.
func setPath(doc any, ptr string, value any, insert bool) (any, error) {
	tokens, err := splitPointer(ptr)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return value, nil
	}
	return setTokens(doc, tokens, value, insert)
}

func setTokens(doc any, tokens []string, value any, insert bool) (any, error) {
	tok := tokens[0]
	last := len(tokens) == 1

	switch c := doc.(type) {
	case map[string]any:
		if last {
			c[tok] = value
			return c, nil
		}
		child, ok := c[tok]
		if !ok {
			return nil, fmt.Errorf("missing key %q", tok)
		}
		updated, err := setTokens(child, tokens[1:], value, insert)
		if err != nil {
			return nil, err
		}
		c[tok] = updated
		return c, nil

	case []any:
		if last {
			if insert {
				i, err := arrayIndex(tok, len(c), true)
				if err != nil {
					return nil, err
				}
				c = append(c, nil)
				copy(c[i+1:], c[i:])
				c[i] = value
				return c, nil
			}
			i, err := arrayIndex(tok, len(c), false)
			if err != nil {
				return nil, err
			}
			c[i] = value
			return c, nil
		}
		i, err := arrayIndex(tok, len(c), false)
		if err != nil {
			return nil, err
		}
		updated, err := setTokens(c[i], tokens[1:], value, insert)
		if err != nil {
			return nil, err
		}
		c[i] = updated
		return c, nil

	default:
		return nil, fmt.Errorf("cannot descend into %T at %q", doc, tok)
	}
}

// removePath deletes the value at ptr, returning the updated document and
// the removed value (needed by move).
func removePath(doc any, ptr string) (any, any, error) {
	tokens, err := splitPointer(ptr)
	if err != nil {
		return nil, nil, err
	}
	if len(tokens) == 0 {
		return nil, doc, nil
	}
	return removeTokens(doc, tokens)
}

func removeTokens(doc any, tokens []string) (any, any, error) {
	tok := tokens[0]
	last := len(tokens) == 1

	switch c := doc.(type) {
	case map[string]any:
		child, ok := c[tok]
		if !ok {
			return nil, nil, fmt.Errorf("missing key %q", tok)
		}
		if last {
			delete(c, tok)
			return c, child, nil
		}
		updated, removed, err := removeTokens(child, tokens[1:])
		if err != nil {
			return nil, nil, err
		}
		c[tok] = updated
		return c, removed, nil

	case []any:
		i, err := arrayIndex(tok, len(c), false)
		if err != nil {
			return nil, nil, err
		}
		if last {
			removed := c[i]
			c = append(c[:i], c[i+1:]...)
			return c, removed, nil
		}
		updated, removed, err := removeTokens(c[i], tokens[1:])
		if err != nil {
			return nil, nil, err
		}
		c[i] = updated
		return c, removed, nil

	default:
		return nil, nil, fmt.Errorf("cannot descend into %T at %q", doc, tok)
	}
}

// valueEqual is the equality used by test ops: structural for containers,
// leafEqual for scalars.
func valueEqual(a, b any) bool {
	if aObj, ok := asObject(a); ok {
		bObj, ok := asObject(b)
		if !ok || len(aObj) != len(bObj) {
			return false
		}
		for k, av := range aObj {
			bv, ok := bObj[k]
			if !ok || !valueEqual(av, bv) {
				return false
			}
		}
		return true
	}
	if aArr, ok := asArray(a); ok {
		bArr, ok := asArray(b)
		if !ok || len(aArr) != len(bArr) {
			return false
		}
		for i := range aArr {
			if !valueEqual(aArr[i], bArr[i]) {
				return false
			}
		}
		return true
	}
	return leafEqual(a, b)
}
