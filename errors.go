package cedarstate

import (
	"errors"
	"fmt"
	"strings"

	"cedarstate/schema"
)

// Engine errors. Lookup failures are reported, never panicked: this engine
// sits under live UI state and must stay total on bad input.
var (
	// ErrStateNotFound is returned when no state is registered under a key.
	ErrStateNotFound = errors.New("state not found")

	// ErrSetterNotFound is returned when a named setter is not registered.
	ErrSetterNotFound = errors.New("custom setter not found")

	// ErrSetterExecuteNil is returned when a setter has no execute function.
	ErrSetterExecuteNil = errors.New("setter execute function cannot be nil")

	// ErrNoDiffState is returned when a diff operation targets a key with
	// no diff record.
	ErrNoDiffState = errors.New("no diff state for key")

	// ErrPatchApply is returned when an incremental patch set cannot be
	// applied to the current working value.
	ErrPatchApply = errors.New("patch application failed")
)

// ValidationError is the single consolidated diagnostic produced when a
// setter's arguments fail schema validation. It carries the received
// arguments, the expected schema, and every individual violation, so one
// error tells the whole story.
type ValidationError struct {
	Key    string
	Setter string
	Args   any
	Schema *schema.Schema
	Issues schema.Issues
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid arguments for setter %q on state %q (received %v): %d violation(s)",
		e.Setter, e.Key, e.Args, len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("; ")
		b.WriteString(issue.Error())
	}
	return b.String()
}

// Unwrap exposes the aggregated violations for errors.Is/As chains.
func (e *ValidationError) Unwrap() error {
	return e.Issues.Err()
}
