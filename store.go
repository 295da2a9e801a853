// Package cedarstate implements a diff-tracked, schema-validated state
// engine for applications where an autonomous agent proposes mutations to
// named state while a human retains review authority. Changes can be staged
// as a diff against a baseline, inspected, accepted or rejected, and the
// mutation history can be undone and redone.
//
// The engine has two coupled halves sharing a key namespace:
//
//   - a state registry holding the current value, an optional external sync
//     callback, an optional value schema, and named custom setters, the
//     sanctioned, auditable mutation path for each key;
//   - a per-key diff store holding {oldState, newState, isDiffMode, patches}
//     plus undo/redo stacks, driven by pure reducers.
//
// All operations are synchronous reducers over in-memory maps. The store is
// safe for concurrent map access, but provides no ordering guarantee across
// overlapping writers to the same key: last write committed wins. Hosts
// needing strict ordering serialize writes per key externally.
package cedarstate

import (
	"sync"

	"go.uber.org/zap"
)

// Store is the engine root. Hosts construct and own one (dependency
// injection, not a package-level singleton) and hand it to whatever layers
// need to read or propose state.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*StateEntry
	diffs   map[string]*DiffHistoryState

	// subscribers fan out committed clean-value changes per key,
	// keyed by subscription ID.
	subscribers map[string]map[string]func(any)

	log *zap.Logger
}

// StoreOption configures a Store at construction time.
type StoreOption func(*Store)

// WithLogger attaches a structured logger. The default is a no-op logger,
// so library consumers pay nothing unless they opt in.
func WithLogger(log *zap.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries:     make(map[string]*StateEntry),
		diffs:       make(map[string]*DiffHistoryState),
		subscribers: make(map[string]map[string]func(any)),
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys returns every key known to either table, for host-side inspection.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.entries)+len(s.diffs))
	keys := make([]string, 0, len(s.entries)+len(s.diffs))
	for k := range s.entries {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range s.diffs {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// notification is a deferred host callback. Callbacks run after the store
// lock is released so hosts may re-enter the store from inside them.
type notification func()

func fire(notifs []notification) {
	for _, fn := range notifs {
		fn()
	}
}
