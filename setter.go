package cedarstate

import (
	"go.uber.org/zap"

	"cedarstate/schema"
)

// Setter is a named, schema-validated mutation operator for one state key.
// Setters are the sanctioned mutation path besides a direct set: the name
// and schema make every mutation auditable and type-checked even though
// the values themselves are dynamically typed.
type Setter struct {
	// Name identifies the setter within its entry.
	Name string

	// Description explains the mutation for documentation and agents.
	Description string

	// ArgsSchema describes the invocation arguments: void (TypeNull), a
	// primitive, an array/tuple (passed as one aggregate), or an object.
	// Nil means unvalidated; execution proceeds with a warning.
	ArgsSchema *schema.Schema

	// Execute computes the next value from the current one. It must be a
	// pure function of its inputs. The bool reports whether to commit:
	// false means no mutation, whatever the returned value.
	Execute func(current any, args any) (any, bool)
}

// SetterOptions tunes one setter invocation.
type SetterOptions struct {
	// IsDiff marks a diff-aware invocation's commit as a staged change
	// (DIFF_PENDING) rather than a baseline advance. Only meaningful for
	// diff-tracked keys.
	IsDiff bool
}

// ExecuteCustomSetter validates args against the named setter's schema and
// runs it, committing the returned value when the setter elects to.
// Diff-tracked keys are redirected to ExecuteDiffSetter. Missing keys or
// setters warn and return the matching sentinel; validation failures
// return a single consolidated ValidationError and never reach Execute.
func (s *Store) ExecuteCustomSetter(key, setterName string, args any, opts *SetterOptions) error {
	s.mu.RLock()
	_, tracked := s.diffs[key]
	s.mu.RUnlock()
	if tracked {
		return s.ExecuteDiffSetter(key, setterName, args, opts)
	}

	setter, current, err := s.lookupSetter(key, setterName)
	if err != nil {
		return err
	}
	validated, err := s.validateSetterArgs(key, setter, args)
	if err != nil {
		return err
	}

	result, commit := s.runSetter(key, setter, current, validated)
	if commit {
		s.SetCedarState(key, result)
	}
	return nil
}

// ExecuteDiffSetter mirrors ExecuteCustomSetter for diff-tracked keys. The
// current value is sourced from the diff record's working copy (newState),
// not the externally visible clean state, so chained diff-tracked setter
// calls compose against the latest pending edits. The result is committed
// via SetDiffState; the commit is a staged change only when opts.IsDiff.
func (s *Store) ExecuteDiffSetter(key, setterName string, args any, opts *SetterOptions) error {
	setter, registered, err := s.lookupSetter(key, setterName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	d := s.ensureDiffLocked(key, registered)
	current := d.DiffState.NewState
	s.mu.Unlock()

	validated, err := s.validateSetterArgs(key, setter, args)
	if err != nil {
		return err
	}

	result, commit := s.runSetter(key, setter, current, validated)
	if commit {
		isDiff := opts != nil && opts.IsDiff
		s.SetDiffState(key, result, isDiff)
	}
	return nil
}

// lookupSetter resolves an entry and one of its setters, warning on misses.
func (s *Store) lookupSetter(key, setterName string) (*Setter, any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		s.log.Warn("setter execution on unregistered state",
			zap.String("key", key),
			zap.String("setter", setterName))
		return nil, nil, ErrStateNotFound
	}
	setter, ok := entry.CustomSetters[setterName]
	if !ok {
		s.log.Warn("unknown custom setter",
			zap.String("key", key),
			zap.String("setter", setterName))
		return nil, nil, ErrSetterNotFound
	}
	if setter.Execute == nil {
		s.log.Warn("setter has no execute function",
			zap.String("key", key),
			zap.String("setter", setterName))
		return nil, nil, ErrSetterExecuteNil
	}
	return setter, entry.Value, nil
}

// validateSetterArgs checks args against the setter's schema. All
// violations are aggregated into one ValidationError carrying the received
// args, the expected schema, and every individual issue. A schema-less
// setter proceeds with a single warning.
func (s *Store) validateSetterArgs(key string, setter *Setter, args any) (any, error) {
	if setter.ArgsSchema == nil {
		s.log.Warn("executing setter without an args schema",
			zap.String("key", key),
			zap.String("setter", setter.Name))
		return args, nil
	}

	var (
		validated any
		issues    schema.Issues
	)
	if setter.ArgsSchema.IsVoid() && args != nil {
		issues = schema.Issues{{
			Code:     schema.CodeUnexpectedArg,
			Message:  "setter takes no arguments",
			Received: args,
		}}
	} else {
		validated, issues = setter.ArgsSchema.Validate(args)
	}
	if issues.Empty() {
		return validated, nil
	}

	verr := &ValidationError{
		Key:    key,
		Setter: setter.Name,
		Args:   args,
		Schema: setter.ArgsSchema,
		Issues: issues,
	}
	s.log.Warn("setter arguments failed validation",
		zap.String("key", key),
		zap.String("setter", setter.Name),
		zap.Any("args", args),
		zap.Any("schema", setter.ArgsSchema),
		zap.Any("violations", issues),
		zap.Error(verr))
	return nil, verr
}

// runSetter executes a setter body, converting a panic into a logged
// no-commit. The engine underlies live UI state; a panicking setter must
// not take the render loop down with it.
func (s *Store) runSetter(key string, setter *Setter, current, args any) (result any, commit bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("custom setter panicked",
				zap.String("key", key),
				zap.String("setter", setter.Name),
				zap.Any("panic", r))
			result, commit = nil, false
		}
	}()
	return setter.Execute(current, args)
}
