package cedarstate

import (
	"fmt"

	"go.uber.org/zap"

	"cedarstate/patch"
)

// DiffMode selects which value a diff-tracked key exposes as its clean
// state while a change is pending.
type DiffMode string

const (
	// DiffModeDefaultAccept exposes pending changes immediately: the clean
	// state is newState and an explicit accept merely finalizes it.
	DiffModeDefaultAccept DiffMode = "defaultAccept"

	// DiffModeHoldAccept hides pending changes: the clean state stays at
	// oldState until the change is explicitly accepted.
	DiffModeHoldAccept DiffMode = "holdAccept"
)

// ComputeStateFunc is a presentational transform applied to a pending
// value, typically annotating added or changed elements for UI
// highlighting. It is a named strategy with a hard contract: referentially
// pure, total, never panics. It may be invoked speculatively on every
// read and is never guarded.
type ComputeStateFunc func(oldState, newState any, patches patch.Patch) any

// DiffState is one version of a diff-tracked value. When IsDiffMode is
// false the two states agree; when true, NewState carries the pending
// proposal and Patches the structural delta from OldState to it.
type DiffState struct {
	OldState   any         `json:"oldState"`
	NewState   any         `json:"newState"`
	IsDiffMode bool        `json:"isDiffMode"`
	Patches    patch.Patch `json:"patches"`
}

// DiffHistoryState is the full per-key diff record: the active version,
// the past and future stacks, and the key's review policy. History and
// RedoStack partition every version that is not currently active; any
// write that is not an undo/redo clears RedoStack.
type DiffHistoryState struct {
	DiffState DiffState
	History   []DiffState
	RedoStack []DiffState
	DiffMode  DiffMode

	// ComputeState, when set, derives the stored/presented value from each
	// incoming one. Excluded from export: functions do not serialize.
	ComputeState ComputeStateFunc

	// HistoryLimit bounds History when positive; the oldest versions are
	// evicted past the limit. Zero means unbounded, the default.
	HistoryLimit int

	// syncedClean is the last clean value handed to notifications. Keys
	// without a registry entry have no entry.Value to dedupe against, so
	// the record tracks it itself.
	syncedClean    any
	syncedCleanSet bool
}

// DiffConfig carries the optional parts of a diff registration.
type DiffConfig struct {
	Mode         DiffMode
	ComputeState ComputeStateFunc
	HistoryLimit int
}

// RegisterDiffState creates (or wholesale-replaces) the diff record for
// key, seeded with initial as both baseline and working value. From this
// point on, direct writes to the key are redirected into the diff engine.
func (s *Store) RegisterDiffState(key string, initial any, cfg *DiffConfig) {
	d := &DiffHistoryState{
		DiffState:      DiffState{OldState: initial, NewState: initial},
		DiffMode:       DiffModeDefaultAccept,
		syncedClean:    initial,
		syncedCleanSet: true,
	}
	if cfg != nil {
		if cfg.Mode != "" {
			d.DiffMode = cfg.Mode
		}
		d.ComputeState = cfg.ComputeState
		d.HistoryLimit = cfg.HistoryLimit
	}

	s.mu.Lock()
	s.diffs[key] = d
	s.mu.Unlock()

	s.log.Debug("registered diff state",
		zap.String("key", key),
		zap.String("mode", string(d.DiffMode)))
}

// GetDiffHistoryState returns a snapshot of the diff record for key, or
// nil when the key is not diff-tracked. Versions and their values are
// deep-copied so callers can inspect and even mutate the snapshot without
// touching live store state.
func (s *Store) GetDiffHistoryState(key string) *DiffHistoryState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.diffs[key]
	if !ok {
		return nil
	}
	out := &DiffHistoryState{
		DiffState:    cloneDiffState(d.DiffState),
		History:      cloneDiffStack(d.History),
		RedoStack:    cloneDiffStack(d.RedoStack),
		DiffMode:     d.DiffMode,
		ComputeState: d.ComputeState,
		HistoryLimit: d.HistoryLimit,
	}
	return out
}

func cloneDiffState(st DiffState) DiffState {
	out := DiffState{
		OldState:   patch.Clone(st.OldState),
		NewState:   patch.Clone(st.NewState),
		IsDiffMode: st.IsDiffMode,
	}
	if st.Patches != nil {
		out.Patches = make(patch.Patch, len(st.Patches))
		for i, op := range st.Patches {
			op.Value = patch.Clone(op.Value)
			out.Patches[i] = op
		}
	}
	return out
}

func cloneDiffStack(stack []DiffState) []DiffState {
	if stack == nil {
		return nil
	}
	out := make([]DiffState, len(stack))
	for i, st := range stack {
		out[i] = cloneDiffState(st)
	}
	return out
}

// SetDiffState stages or commits a full new value for a diff-tracked key.
//
// With isDiffChange true the write is a staged proposal: if the key was
// clean, the previous working value becomes the new baseline; if a diff
// was already pending, the existing baseline keeps accumulating. With
// isDiffChange false both pointers advance together (a baseline write).
// Either way the previous version is pushed onto History and RedoStack is
// cleared: a new edit invalidates any pending redo branch.
func (s *Store) SetDiffState(key string, newValue any, isDiffChange bool) {
	s.mu.Lock()
	d := s.ensureDiffLocked(key, s.registeredValueLocked(key))
	notifs := s.commitDiffLocked(key, d, newValue, isDiffChange)
	s.mu.Unlock()
	fire(notifs)
}

// ApplyPatchesToDiffState is the entry point for callers holding only an
// incremental patch set (a remote partial update, for example) rather than
// a full new value. The patches are applied immutably to the current
// working value to derive the full value, which then follows the exact
// SetDiffState path.
func (s *Store) ApplyPatchesToDiffState(key string, patches patch.Patch, isDiffChange bool) error {
	s.mu.Lock()
	// Derive before touching the diff table: a failed patch set against a
	// previously untracked key must not lazily create a record, which would
	// re-route later direct writes into the diff engine.
	base := s.registeredValueLocked(key)
	if d, ok := s.diffs[key]; ok {
		base = d.DiffState.NewState
	}
	derived, err := patch.Apply(base, patches)
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("could not apply incremental patches",
			zap.String("key", key),
			zap.Int("patches", len(patches)),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPatchApply, err)
	}
	d := s.ensureDiffLocked(key, s.registeredValueLocked(key))
	notifs := s.commitDiffLocked(key, d, derived, isDiffChange)
	s.mu.Unlock()
	fire(notifs)
	return nil
}

// commitDiffLocked is the single write reducer shared by every diff-store
// mutation that carries a full new value.
func (s *Store) commitDiffLocked(key string, d *DiffHistoryState, newValue any, isDiffChange bool) []notification {
	prev := d.DiffState

	// Baseline selection: a fresh staged change promotes the previous
	// working value to baseline; an accumulating or baseline write keeps
	// the existing one.
	oldBase := prev.OldState
	if isDiffChange && !prev.IsDiffMode {
		oldBase = prev.NewState
	}

	final := newValue
	if d.ComputeState != nil {
		final = d.ComputeState(oldBase, newValue, patch.Diff(oldBase, newValue))
	}

	d.pushHistory(prev)
	d.RedoStack = nil
	next := DiffState{
		OldState:   oldBase,
		NewState:   final,
		IsDiffMode: isDiffChange,
		Patches:    patch.Diff(oldBase, final),
	}
	if !isDiffChange {
		// Baseline write: both pointers advance together so the
		// clean-state invariant (old == new outside diff mode) holds.
		// The computed patches stay for inspection.
		next.OldState = final
	}
	d.DiffState = next

	s.log.Debug("diff state updated",
		zap.String("key", key),
		zap.Bool("isDiffChange", isDiffChange),
		zap.Int("patches", len(d.DiffState.Patches)),
		zap.Int("history", len(d.History)))

	return s.syncCleanLocked(key, d)
}

// pushHistory records a version, evicting the oldest past HistoryLimit.
func (d *DiffHistoryState) pushHistory(state DiffState) {
	d.History = append(d.History, state)
	if d.HistoryLimit > 0 && len(d.History) > d.HistoryLimit {
		overflow := len(d.History) - d.HistoryLimit
		d.History = append([]DiffState(nil), d.History[overflow:]...)
	}
}

// cleanValue is the policy-selected canonical value of a diff record.
func (d *DiffHistoryState) cleanValue() any {
	if d.DiffMode == DiffModeHoldAccept {
		return d.DiffState.OldState
	}
	return d.DiffState.NewState
}

// ensureDiffLocked returns the diff record for key, lazily creating one on
// the first diff-tracked write. A lazily created record starts clean,
// seeded from the registry's current value for the key (nil when the key
// is diff-only).
func (s *Store) ensureDiffLocked(key string, seed any) *DiffHistoryState {
	if d, ok := s.diffs[key]; ok {
		return d
	}
	d := &DiffHistoryState{
		DiffState:      DiffState{OldState: seed, NewState: seed},
		DiffMode:       DiffModeDefaultAccept,
		syncedClean:    seed,
		syncedCleanSet: true,
	}
	s.diffs[key] = d
	return d
}

func (s *Store) registeredValueLocked(key string) any {
	if entry, ok := s.entries[key]; ok {
		return entry.Value
	}
	return nil
}

// syncCleanLocked mirrors a diff record's clean value into the registry
// entry for the same key, returning the host notifications to fire once
// the lock is released. Keys that exist only in the diff table still
// notify their subscribers.
func (s *Store) syncCleanLocked(key string, d *DiffHistoryState) []notification {
	clean := d.cleanValue()
	entry := s.entries[key]
	if entry != nil {
		if sameValue(entry.Value, clean) {
			return nil
		}
		entry.Value = clean
	} else if d.syncedCleanSet && sameValue(d.syncedClean, clean) {
		return nil
	}
	d.syncedClean = clean
	d.syncedCleanSet = true
	return s.commitNotificationsLocked(key, entry, clean)
}
