package cedarstate

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewStore(t *testing.T) {
	s := NewStore()
	require.NotNil(t, s)
	assert.Empty(t, s.Keys())
	assert.Nil(t, s.GetCedarState("anything"))
}

func TestStoreWithLogger(t *testing.T) {
	log := zap.NewExample()
	s := NewStore(WithLogger(log))
	require.NotNil(t, s)

	// Nil logger option must not clobber the default.
	s2 := NewStore(WithLogger(nil))
	s2.RegisterState("k", 1, nil)
	assert.Equal(t, 1, s2.GetCedarState("k"))
}

func TestKeysSpanBothTables(t *testing.T) {
	s := NewStore()
	s.RegisterState("plain", 1, nil)
	s.RegisterState("both", 2, nil)
	s.RegisterDiffState("both", 2, nil)
	s.RegisterDiffState("diffOnly", 3, nil)

	keys := s.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"both", "diffOnly", "plain"}, keys)
}
