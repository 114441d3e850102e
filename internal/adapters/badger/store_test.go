package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtest/internal/adapters/storetest"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

var (
	_ ports.AssignmentStore  = (*Store)(nil)
	_ ports.AssignmentLister = (*Store)(nil)
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		s, err := OpenInMemory()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "ab_test_hero", "A"))
	require.NoError(t, s.Close())

	s2, err := Open(Config{Path: dir})
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get(ctx, "ab_test_hero")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", v)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
