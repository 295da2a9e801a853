package cedarstate

import (
	"reflect"

	"cedarstate/patch"
)

// GetCleanState returns the policy-selected canonical value for key: the
// pending new value under defaultAccept (optimistic), the last-accepted
// old value under holdAccept (pending changes stay hidden until accepted).
// Keys without a diff record fall back to the registry value.
func (s *Store) GetCleanState(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.diffs[key]; ok {
		return d.cleanValue()
	}
	if entry, ok := s.entries[key]; ok {
		return entry.Value
	}
	return nil
}

// GetComputedState returns the presentational, annotated value for key.
// When a ComputeState transform is registered it is recomputed fresh on
// every call, never cached, so annotations always reflect the latest
// pending diff regardless of the key's diff mode. Without a transform this
// is GetCleanState.
func (s *Store) GetComputedState(key string) any {
	s.mu.RLock()
	d, ok := s.diffs[key]
	if !ok || d.ComputeState == nil {
		s.mu.RUnlock()
		return s.GetCleanState(key)
	}
	oldState := d.DiffState.OldState
	newState := d.DiffState.NewState
	compute := d.ComputeState
	s.mu.RUnlock()

	return compute(oldState, newState, patch.Diff(oldState, newState))
}

// sameValue is the engine's deep equality over JSON-like values.
func sameValue(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
