package collision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svt/orm/internal/collision/automaton"
	"github.com/svt/orm/internal/model"
)

func pathLeaf(fn model.Function, value string, ignoreCase bool) *model.Tree {
	return model.Match(model.SourcePath, fn, model.Input{Value: value, IgnoreCase: ignoreCase})
}

func TestProject_BeginsWithOverlapsExact(t *testing.T) {
	a := model.All(pathLeaf(model.FuncBeginsWith, "/api", false))
	b := model.All(pathLeaf(model.FuncExact, "/api/v1", false))

	da, err := Project(context.Background(), 2, a)
	require.NoError(t, err)
	db, err := Project(context.Background(), 2, b)
	require.NoError(t, err)

	assert.False(t, automaton.IsDisjoint(da, db))
}

func TestProject_IgnoreCaseCollision(t *testing.T) {
	a := model.All(pathLeaf(model.FuncExact, "/Foo", true))
	b := model.All(pathLeaf(model.FuncExact, "/foo", false))

	da, err := Project(context.Background(), 2, a)
	require.NoError(t, err)
	db, err := Project(context.Background(), 2, b)
	require.NoError(t, err)

	assert.False(t, automaton.IsDisjoint(da, db))
}

func TestProject_PathFreeTreeIsUniversal(t *testing.T) {
	methodOnly := model.All(model.Match(model.SourceMethod, model.FuncExact, model.Input{Value: "GET"}))
	d, err := Project(context.Background(), 2, methodOnly)
	require.NoError(t, err)
	assert.True(t, d.Accepts("/anything/at/all"))
}

func TestProject_NotNegatesPathPredicate(t *testing.T) {
	notAPI := model.Not(model.All(pathLeaf(model.FuncBeginsWith, "/api", false)))
	d, err := Project(context.Background(), 2, notAPI)
	require.NoError(t, err)
	assert.False(t, d.Accepts("/api/v1"))
	assert.True(t, d.Accepts("/static/x"))
}

func TestProject_AnyUnionsSiblings(t *testing.T) {
	tree := model.Any(
		pathLeaf(model.FuncExact, "/a", false),
		pathLeaf(model.FuncExact, "/b", false),
	)
	d, err := Project(context.Background(), 2, tree)
	require.NoError(t, err)
	assert.True(t, d.Accepts("/a"))
	assert.True(t, d.Accepts("/b"))
	assert.False(t, d.Accepts("/c"))
}
