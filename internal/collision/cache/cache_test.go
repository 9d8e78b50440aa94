package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svt/orm/internal/collision/automaton"
)

func TestStore_MissThenStageFlushThenHit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fsm.db")

	s, err := Open(ctx, path, 0)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "example.com|^/api.*$")
	require.NoError(t, err)
	assert.False(t, ok)

	d, err := automaton.FromPattern(`^/api.*$`)
	require.NoError(t, err)
	s.Stage("example.com|^/api.*$", `^/api.*$`, d)
	require.NoError(t, s.Flush(ctx))

	got, ok, err := s.Get(ctx, "example.com|^/api.*$")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Accepts("/api/v1"))
	assert.False(t, got.Accepts("/other"))
}

func TestStore_DiscardExcludesFromFlush(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fsm.db")

	s, err := Open(ctx, path, 0)
	require.NoError(t, err)
	defer s.Close()

	d, err := automaton.FromPattern(`^/x$`)
	require.NoError(t, err)
	s.Stage("a|x", `^/x$`, d)
	s.Discard("a|x")
	require.NoError(t, s.Flush(ctx))

	_, ok, err := s.Get(ctx, "a|x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fsm.db")

	s1, err := Open(ctx, path, 0)
	require.NoError(t, err)
	d, err := automaton.FromPattern(`^/reopen$`)
	require.NoError(t, err)
	s1.Stage("k", `^/reopen$`, d)
	require.NoError(t, s1.Flush(ctx))
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, path, 0)
	require.NoError(t, err)
	defer s2.Close()

	got, ok, err := s2.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Accepts("/reopen"))
}
