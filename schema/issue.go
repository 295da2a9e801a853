package schema

import (
	"fmt"

	"go.uber.org/multierr"
)

// Violation codes reported by Validate.
const (
	CodeTypeMismatch  = "type_mismatch"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeEnum          = "enum"
	CodeMinimum       = "minimum"
	CodeMaximum       = "maximum"
	CodeMinLength     = "min_length"
	CodeMaxLength     = "max_length"
	CodeNotInteger    = "not_integer"
	CodeUnexpectedArg = "unexpected_argument"
)

// Issue records a single violation at a JSON-pointer path within the
// validated value. Received carries the offending value, Expected the
// schema-side expectation, so a report is self-contained.
type Issue struct {
	Path     string `json:"path"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Received any    `json:"received,omitempty"`
	Expected any    `json:"expected,omitempty"`
}

// Error implements error for a single issue.
func (i Issue) Error() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s at %q: %s", i.Code, i.Path, i.Message)
}

// Issues aggregates every violation found in one validation pass.
type Issues []Issue

// Err collapses the issue list into a single error, or nil when empty.
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	errs := make([]error, len(is))
	for i, issue := range is {
		errs[i] = issue
	}
	return multierr.Combine(errs...)
}

func (is Issues) Empty() bool { return len(is) == 0 }

func (is *Issues) add(path, code, message string, received, expected any) {
	*is = append(*is, Issue{
		Path:     path,
		Code:     code,
		Message:  message,
		Received: received,
		Expected: expected,
	})
}
