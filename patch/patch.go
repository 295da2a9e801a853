// Package patch implements RFC 6902 JSON Patch computation and application
// over JSON-like Go values (map[string]any, []any, and scalars).
//
// Diff produces the structural delta between two values as an ordered list
// of add/remove/replace operations at JSON-pointer paths. Apply replays a
// patch immutably, returning a new document and leaving the input untouched.
package patch

import (
	"fmt"
)

// Kind identifies a JSON Patch operation.
type Kind string

const (
	OpAdd     Kind = "add"
	OpRemove  Kind = "remove"
	OpReplace Kind = "replace"
	OpMove    Kind = "move"
	OpCopy    Kind = "copy"
	OpTest    Kind = "test"
)

// Op is a single JSON Patch operation.
// Value is meaningful for add/replace/test; From for move/copy.
type Op struct {
	Kind  Kind   `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
}

// Patch is an ordered sequence of operations. Order matters: array removes
// are emitted highest-index-first so earlier ops never shift the indices
// later ops refer to.
type Patch []Op

// String renders an op in the compact form used by logs and the replay CLI.
func (o Op) String() string {
	switch o.Kind {
	case OpMove, OpCopy:
		return fmt.Sprintf("%s %s -> %s", o.Kind, o.From, o.Path)
	case OpRemove:
		return fmt.Sprintf("%s %s", o.Kind, o.Path)
	default:
		return fmt.Sprintf("%s %s = %v", o.Kind, o.Path, o.Value)
	}
}

// Validate checks that every op carries the fields its kind requires.
func (p Patch) Validate() error {
	for i, op := range p {
		switch op.Kind {
		case OpAdd, OpReplace, OpTest:
			// Value may legitimately be nil (JSON null); only the path needs checking.
		case OpRemove:
		case OpMove, OpCopy:
			if op.From == "" && op.Path == "" {
				return fmt.Errorf("op %d: %s requires a from pointer", i, op.Kind)
			}
		default:
			return fmt.Errorf("op %d: unknown kind %q", i, op.Kind)
		}
		if op.Path != "" && op.Path[0] != '/' {
			return fmt.Errorf("op %d: path %q is not a JSON pointer", i, op.Path)
		}
	}
	return nil
}
