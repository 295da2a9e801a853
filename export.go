package cedarstate

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// diffHistoryExport is the JSON shape of a diff record. ComputeState is
// deliberately absent: closures do not serialize, and a registered
// transform survives an import untouched.
type diffHistoryExport struct {
	DiffState    DiffState   `json:"diffState"`
	History      []DiffState `json:"history"`
	RedoStack    []DiffState `json:"redoStack"`
	DiffMode     DiffMode    `json:"diffMode"`
	HistoryLimit int         `json:"historyLimit,omitempty"`
}

// ExportDiffHistoryState serializes the diff record for key so the host
// can persist it (persistence itself is the host's concern). Returns
// ErrNoDiffState for keys that are not diff-tracked.
func (s *Store) ExportDiffHistoryState(key string) ([]byte, error) {
	s.mu.RLock()
	d, ok := s.diffs[key]
	if !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %q", ErrNoDiffState, key)
	}
	exp := diffHistoryExport{
		DiffState:    d.DiffState,
		History:      append([]DiffState(nil), d.History...),
		RedoStack:    append([]DiffState(nil), d.RedoStack...),
		DiffMode:     d.DiffMode,
		HistoryLimit: d.HistoryLimit,
	}
	s.mu.RUnlock()

	return json.Marshal(exp)
}

// ImportDiffHistoryState restores a previously exported diff record under
// key. A ComputeState transform already registered for the key is kept;
// the imported clean value is synced into the registry like any other
// diff-engine transition.
func (s *Store) ImportDiffHistoryState(key string, data []byte) error {
	var exp diffHistoryExport
	if err := json.Unmarshal(data, &exp); err != nil {
		return fmt.Errorf("import diff history for %q: %w", key, err)
	}
	if exp.DiffMode == "" {
		exp.DiffMode = DiffModeDefaultAccept
	}

	s.mu.Lock()
	d := &DiffHistoryState{
		DiffState:    exp.DiffState,
		History:      exp.History,
		RedoStack:    exp.RedoStack,
		DiffMode:     exp.DiffMode,
		HistoryLimit: exp.HistoryLimit,
	}
	if existing, ok := s.diffs[key]; ok {
		d.ComputeState = existing.ComputeState
		d.syncedClean = existing.syncedClean
		d.syncedCleanSet = existing.syncedCleanSet
	}
	s.diffs[key] = d
	notifs := s.syncCleanLocked(key, d)
	s.mu.Unlock()

	s.log.Info("imported diff history",
		zap.String("key", key),
		zap.Int("history", len(d.History)),
		zap.Int("redo", len(d.RedoStack)))
	fire(notifs)
	return nil
}
