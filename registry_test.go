package cedarstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cedarstate/schema"
)

func TestRegisterAndGet(t *testing.T) {
	s := NewStore()
	s.RegisterState("title", "hello", &StateConfig{Description: "doc title"})

	assert.Equal(t, "hello", s.GetCedarState("title"))

	entry := s.GetStateEntry("title")
	require.NotNil(t, entry)
	assert.Equal(t, "doc title", entry.Description)
}

func TestReRegisterReplacesEveryField(t *testing.T) {
	s := NewStore()

	var firstSyncs, secondSyncs int
	s.RegisterState("k", 1, &StateConfig{
		ExternalSync: func(any) { firstSyncs++ },
		ValueSchema:  &schema.Schema{Type: schema.TypeInteger},
		Setters: map[string]*Setter{
			"old": {Name: "old", Execute: func(cur, args any) (any, bool) { return cur, false }},
		},
	})

	// Hosts re-register the same key with fresh closures; the stale sync
	// callback must never fire again.
	s.RegisterState("k", 2, &StateConfig{
		ExternalSync: func(any) { secondSyncs++ },
	})

	s.SetCedarState("k", 3)

	assert.Equal(t, 0, firstSyncs)
	assert.Equal(t, 1, secondSyncs)

	entry := s.GetStateEntry("k")
	require.NotNil(t, entry)
	assert.Nil(t, entry.ValueSchema)
	assert.Empty(t, entry.CustomSetters)
}

func TestSetCedarState(t *testing.T) {
	t.Run("unknown key is a warned no-op", func(t *testing.T) {
		s := NewStore()
		s.SetCedarState("ghost", 1)
		assert.Nil(t, s.GetCedarState("ghost"))
	})

	t.Run("deep-equal write is dropped", func(t *testing.T) {
		s := NewStore()
		syncs := 0
		s.RegisterState("cfg", map[string]any{"a": 1}, &StateConfig{
			ExternalSync: func(any) { syncs++ },
		})

		s.SetCedarState("cfg", map[string]any{"a": 1})
		assert.Zero(t, syncs, "equal value should not re-fire external sync")

		s.SetCedarState("cfg", map[string]any{"a": 2})
		assert.Equal(t, 1, syncs)
	})

	t.Run("external sync panic does not roll back the value", func(t *testing.T) {
		s := NewStore()
		s.RegisterState("k", "old", &StateConfig{
			ExternalSync: func(any) { panic("host bug") },
		})

		assert.NotPanics(t, func() { s.SetCedarState("k", "new") })
		assert.Equal(t, "new", s.GetCedarState("k"))
	})

	t.Run("diff-tracked key is redirected into the diff engine", func(t *testing.T) {
		s := NewStore()
		s.RegisterState("doc", "v1", nil)
		s.RegisterDiffState("doc", "v1", nil)

		s.SetCedarState("doc", "v2")

		d := s.GetDiffHistoryState("doc")
		require.NotNil(t, d)
		assert.True(t, d.DiffState.IsDiffMode)
		assert.Equal(t, "v1", d.DiffState.OldState)
		assert.Equal(t, "v2", d.DiffState.NewState)
	})
}

func TestAddCustomSettersCreatesPlaceholder(t *testing.T) {
	s := NewStore()

	ok := s.AddCustomSetters("later", map[string]*Setter{
		"touch": {Name: "touch", Execute: func(cur, args any) (any, bool) { return "touched", true }},
	})
	assert.True(t, ok)

	entry := s.GetStateEntry("later")
	require.NotNil(t, entry)
	assert.Nil(t, entry.Value)
	require.Contains(t, entry.CustomSetters, "touch")

	// Merging into an existing entry keeps previously registered setters.
	s.AddCustomSetters("later", map[string]*Setter{
		"other": {Name: "other", Execute: func(cur, args any) (any, bool) { return cur, false }},
	})
	entry = s.GetStateEntry("later")
	assert.Len(t, entry.CustomSetters, 2)
}

func TestSubscribe(t *testing.T) {
	s := NewStore()
	s.RegisterState("k", 0, nil)

	var got []any
	id := s.Subscribe("k", func(v any) { got = append(got, v) })

	s.SetCedarState("k", 1)
	s.SetCedarState("k", 2)
	require.Equal(t, []any{1, 2}, got)

	s.Unsubscribe("k", id)
	s.SetCedarState("k", 3)
	assert.Equal(t, []any{1, 2}, got)
}

func TestSubscribeSeesDiffEngineTransitions(t *testing.T) {
	s := NewStore()
	s.RegisterState("doc", "v1", nil)
	s.RegisterDiffState("doc", "v1", &DiffConfig{Mode: DiffModeHoldAccept})

	var got []any
	s.Subscribe("doc", func(v any) { got = append(got, v) })

	// Under holdAccept the clean value does not move on staging, only on
	// accept.
	s.SetDiffState("doc", "v2", true)
	assert.Empty(t, got)

	s.AcceptAllDiffs("doc")
	assert.Equal(t, []any{"v2"}, got)
}

func TestSubscribeDiffOnlyKeyDedupes(t *testing.T) {
	s := NewStore()
	// No registry entry: the key lives only in the diff table.
	s.RegisterDiffState("doc", "v1", &DiffConfig{Mode: DiffModeHoldAccept})

	var got []any
	s.Subscribe("doc", func(v any) { got = append(got, v) })

	// Staging under holdAccept leaves the clean value at the baseline, so
	// subscribers stay quiet even without an entry to dedupe against.
	s.SetDiffState("doc", "v2", true)
	assert.Empty(t, got)

	s.SetDiffState("doc", "v3", true)
	assert.Empty(t, got)

	require.True(t, s.AcceptAllDiffs("doc"))
	assert.Equal(t, []any{"v3"}, got)

	// Rejecting a later proposal restores the accepted value: no change,
	// no notification.
	s.SetDiffState("doc", "v4", true)
	require.True(t, s.RejectAllDiffs("doc"))
	assert.Equal(t, []any{"v3"}, got)
}
