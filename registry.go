package cedarstate

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cedarstate/schema"
)

// StateEntry is the registry record for one key: the current value plus
// everything needed to mutate it in a sanctioned, auditable way.
type StateEntry struct {
	// Key is the unique name of this piece of state.
	Key string

	// Value is the current value. JSON-like by contract: maps, slices,
	// and scalars. Closures never live inside Value.
	Value any

	// Description explains the state for diagnostics and agent context.
	Description string

	// ExternalSync, when set, is invoked with each committed value so the
	// host can mirror it into a variable it owns. A panicking callback is
	// caught and logged; the committed value is never rolled back.
	ExternalSync func(newValue any)

	// ValueSchema optionally describes the value's expected shape.
	ValueSchema *schema.Schema

	// CustomSetters are the named mutation operators registered for this
	// key, looked up by setter name.
	CustomSetters map[string]*Setter
}

// StateConfig carries the optional parts of a registration.
type StateConfig struct {
	ExternalSync func(newValue any)
	Description  string
	ValueSchema  *schema.Schema
	Setters      map[string]*Setter
}

// RegisterState inserts or wholesale-replaces the entry for key. Every
// field is overwritten on re-registration, including callback closures:
// hosts re-register the same key repeatedly with fresh closures, and a
// stale closure must never fire again. Never fails.
func (s *Store) RegisterState(key string, value any, cfg *StateConfig) {
	entry := &StateEntry{
		Key:           key,
		Value:         value,
		CustomSetters: make(map[string]*Setter),
	}
	if cfg != nil {
		entry.ExternalSync = cfg.ExternalSync
		entry.Description = cfg.Description
		entry.ValueSchema = cfg.ValueSchema
		for name, setter := range cfg.Setters {
			entry.CustomSetters[name] = setter
		}
	}

	s.mu.Lock()
	replaced := s.entries[key] != nil
	s.entries[key] = entry
	s.mu.Unlock()

	s.log.Debug("registered state",
		zap.String("key", key),
		zap.Bool("replaced", replaced),
		zap.Int("setters", len(entry.CustomSetters)))
}

// GetCedarState returns the registered value for key, or nil when the key
// is unknown.
func (s *Store) GetCedarState(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	return entry.Value
}

// GetStateEntry returns the full registry record for key, or nil.
func (s *Store) GetStateEntry(key string) *StateEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key]
}

// SetCedarState writes a value directly. Diff-tracked keys are redirected
// into the diff engine as a staged change; plain keys commit immediately.
// Unknown keys warn and no-op. A write that is deep-equal to the current
// value is dropped to avoid redundant sync callbacks.
func (s *Store) SetCedarState(key string, value any) {
	s.mu.Lock()
	if _, tracked := s.diffs[key]; tracked {
		s.mu.Unlock()
		s.SetDiffState(key, value, true)
		return
	}

	entry, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		s.log.Warn("set on unregistered state", zap.String("key", key))
		return
	}
	if sameValue(entry.Value, value) {
		s.mu.Unlock()
		return
	}

	entry.Value = value
	notifs := s.commitNotificationsLocked(key, entry, value)
	s.mu.Unlock()
	fire(notifs)
}

// AddCustomSetters merges setters into the entry for key. When no entry
// exists yet, a placeholder entry (nil value, no schema) is created so
// setters can be registered ahead of the value. Reports whether an entry
// now exists under the key.
func (s *Store) AddCustomSetters(key string, setters map[string]*Setter) bool {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok {
		entry = &StateEntry{Key: key, CustomSetters: make(map[string]*Setter)}
		s.entries[key] = entry
		s.log.Debug("created placeholder entry for setters", zap.String("key", key))
	}
	for name, setter := range setters {
		entry.CustomSetters[name] = setter
	}
	s.mu.Unlock()
	return true
}

// Subscribe registers a callback fired with each committed clean value for
// key, returning an opaque subscription ID for Unsubscribe. Callbacks run
// outside the store lock and may re-enter the store.
func (s *Store) Subscribe(key string, fn func(newValue any)) string {
	id := uuid.NewString()
	s.mu.Lock()
	subs, ok := s.subscribers[key]
	if !ok {
		subs = make(map[string]func(any))
		s.subscribers[key] = subs
	}
	subs[id] = fn
	s.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription by ID. Unknown IDs are ignored.
func (s *Store) Unsubscribe(key, id string) {
	s.mu.Lock()
	if subs, ok := s.subscribers[key]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(s.subscribers, key)
		}
	}
	s.mu.Unlock()
}

// commitNotificationsLocked builds the deferred callbacks for a committed
// value: the entry's external sync plus every subscriber. The external sync
// and the internal commit are independent failure domains: a panicking
// callback is logged and the stored value stands.
func (s *Store) commitNotificationsLocked(key string, entry *StateEntry, value any) []notification {
	var notifs []notification
	if entry != nil && entry.ExternalSync != nil {
		sync := entry.ExternalSync
		notifs = append(notifs, func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("external sync callback panicked",
						zap.String("key", key),
						zap.Any("panic", r))
				}
			}()
			sync(value)
		})
	}
	for id, fn := range s.subscribers[key] {
		id, fn := id, fn
		notifs = append(notifs, func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("subscriber panicked",
						zap.String("key", key),
						zap.String("subscription", id),
						zap.Any("panic", r))
				}
			}()
			fn(value)
		})
	}
	return notifs
}
