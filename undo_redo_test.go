package cedarstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cedarstate/patch"
)

// snapshotDiff captures the comparable parts of a diff record.
func snapshotDiff(t *testing.T, s *Store, key string) DiffState {
	t.Helper()
	d := s.GetDiffHistoryState(key)
	require.NotNil(t, d)
	return d.DiffState
}

func TestUndoRestoresEveryWrite(t *testing.T) {
	s := NewStore()
	s.RegisterDiffState("k", map[string]any{"step": 0}, nil)
	before := snapshotDiff(t, s, "k")

	const n = 7
	for i := 1; i <= n; i++ {
		s.SetDiffState("k", map[string]any{"step": i}, i%2 == 0)
	}
	for i := 0; i < n; i++ {
		require.True(t, s.Undo("k"), "undo %d should succeed", i)
	}

	// n writes followed by n undos land exactly on the starting state.
	if diff := cmp.Diff(before, snapshotDiff(t, s, "k")); diff != "" {
		t.Errorf("state after undo sequence (-want +got):\n%s", diff)
	}
	assert.False(t, s.Undo("k"), "history is exhausted")
}

func TestRedoInvertsUndo(t *testing.T) {
	s := NewStore()
	s.RegisterDiffState("k", "v0", nil)
	s.SetDiffState("k", "v1", true)
	s.SetDiffState("k", "v2", true)

	preUndo := snapshotDiff(t, s, "k")
	require.True(t, s.Undo("k"))
	require.True(t, s.Redo("k"))

	if diff := cmp.Diff(preUndo, snapshotDiff(t, s, "k")); diff != "" {
		t.Errorf("redo(undo(s)) != s (-want +got):\n%s", diff)
	}
}

func TestRedoWithoutPriorUndo(t *testing.T) {
	s := NewStore()
	s.RegisterDiffState("k", "v0", nil)
	s.SetDiffState("k", "v1", true)

	assert.False(t, s.Redo("k"))
}

func TestFreshWriteClearsRedoStack(t *testing.T) {
	s := NewStore()
	s.RegisterDiffState("k", "v0", nil)
	s.SetDiffState("k", "v1", true)
	s.SetDiffState("k", "v2", true)

	require.True(t, s.Undo("k"))
	require.NotEmpty(t, s.GetDiffHistoryState("k").RedoStack)

	s.SetDiffState("k", "v3", true)
	assert.Empty(t, s.GetDiffHistoryState("k").RedoStack)
	assert.False(t, s.Redo("k"), "redo must fail immediately after a fresh write")
}

func TestApplyPatchesClearsRedoStack(t *testing.T) {
	s := NewStore()
	s.RegisterDiffState("k", map[string]any{"a": 1}, nil)
	s.SetDiffState("k", map[string]any{"a": 2}, true)
	require.True(t, s.Undo("k"))
	require.NotEmpty(t, s.GetDiffHistoryState("k").RedoStack)

	require.NoError(t, s.ApplyPatchesToDiffState("k",
		patch.Diff(map[string]any{"a": 1}, map[string]any{"a": 3}), true))
	assert.False(t, s.Redo("k"))
}

func TestAcceptPreservesRedoStack(t *testing.T) {
	s := NewStore()
	s.RegisterDiffState("k", "v0", nil)
	s.SetDiffState("k", "v1", true)
	s.SetDiffState("k", "v2", true)
	require.True(t, s.Undo("k"))

	// Accepting is a review decision, not an edit: the redo branch
	// survives it.
	require.True(t, s.AcceptAllDiffs("k"))
	assert.NotEmpty(t, s.GetDiffHistoryState("k").RedoStack)
	assert.True(t, s.Redo("k"))
}

func TestUndoCrossesAcceptBoundaries(t *testing.T) {
	s := NewStore()
	s.RegisterDiffState("doc", "v1", nil)
	s.SetDiffState("doc", "v2", true)
	require.True(t, s.AcceptAllDiffs("doc"))

	// First undo returns to the pending (DIFF_PENDING) version...
	require.True(t, s.Undo("doc"))
	d := snapshotDiff(t, s, "doc")
	assert.True(t, d.IsDiffMode)
	assert.Equal(t, "v2", d.NewState)

	// ...and the next to the original clean version.
	require.True(t, s.Undo("doc"))
	d = snapshotDiff(t, s, "doc")
	assert.False(t, d.IsDiffMode)
	assert.Equal(t, "v1", d.NewState)
}
