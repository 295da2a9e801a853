package cedarstate

import (
	"go.uber.org/zap"
)

// AcceptAllDiffs finalizes a pending diff: the proposed value becomes the
// new baseline and the key returns to the clean state. Returns false, and
// changes nothing, when the key is unknown or has no diff pending. The
// redo stack is preserved: accepting is a review decision, not an edit.
func (s *Store) AcceptAllDiffs(key string) bool {
	s.mu.Lock()
	d, ok := s.diffs[key]
	if !ok || !d.DiffState.IsDiffMode {
		s.mu.Unlock()
		s.log.Debug("accept with no pending diff", zap.String("key", key))
		return false
	}

	prev := d.DiffState
	d.pushHistory(prev)
	d.DiffState = DiffState{
		OldState:   prev.NewState,
		NewState:   prev.NewState,
		IsDiffMode: false,
	}
	notifs := s.syncCleanLocked(key, d)
	s.mu.Unlock()

	s.log.Info("accepted pending diff", zap.String("key", key))
	fire(notifs)
	return true
}

// RejectAllDiffs discards a pending diff: the proposed value is dropped
// and the baseline stands. Symmetric to AcceptAllDiffs, including the
// false return when nothing is pending.
func (s *Store) RejectAllDiffs(key string) bool {
	s.mu.Lock()
	d, ok := s.diffs[key]
	if !ok || !d.DiffState.IsDiffMode {
		s.mu.Unlock()
		s.log.Debug("reject with no pending diff", zap.String("key", key))
		return false
	}

	prev := d.DiffState
	d.pushHistory(prev)
	d.DiffState = DiffState{
		OldState:   prev.OldState,
		NewState:   prev.OldState,
		IsDiffMode: false,
	}
	notifs := s.syncCleanLocked(key, d)
	s.mu.Unlock()

	s.log.Info("rejected pending diff", zap.String("key", key))
	fire(notifs)
	return true
}

// Undo restores the previous version of a diff-tracked key, moving the
// current version onto the redo stack. Returns false when there is no
// history to pop.
func (s *Store) Undo(key string) bool {
	s.mu.Lock()
	d, ok := s.diffs[key]
	if !ok || len(d.History) == 0 {
		s.mu.Unlock()
		s.log.Debug("undo with no history", zap.String("key", key))
		return false
	}

	top := d.History[len(d.History)-1]
	d.History = d.History[:len(d.History)-1]
	d.RedoStack = append(d.RedoStack, d.DiffState)
	d.DiffState = top
	notifs := s.syncCleanLocked(key, d)
	s.mu.Unlock()

	fire(notifs)
	return true
}

// Redo reverses the most recent Undo. Returns false when the redo stack is
// empty, notably immediately after any fresh write, which clears
// the pending redo branch.
func (s *Store) Redo(key string) bool {
	s.mu.Lock()
	d, ok := s.diffs[key]
	if !ok || len(d.RedoStack) == 0 {
		s.mu.Unlock()
		s.log.Debug("redo with empty redo stack", zap.String("key", key))
		return false
	}

	top := d.RedoStack[len(d.RedoStack)-1]
	d.RedoStack = d.RedoStack[:len(d.RedoStack)-1]
	d.History = append(d.History, d.DiffState)
	d.DiffState = top
	notifs := s.syncCleanLocked(key, d)
	s.mu.Unlock()

	fire(notifs)
	return true
}
