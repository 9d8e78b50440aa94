package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPattern_Literal(t *testing.T) {
	d, err := FromPattern(`^/api/v1$`)
	require.NoError(t, err)
	assert.True(t, d.Accepts("/api/v1"))
	assert.False(t, d.Accepts("/api/v2"))
	assert.False(t, d.Accepts("/api/v1/"))
}

func TestFromPattern_Star(t *testing.T) {
	d, err := FromPattern(`^/api/.*$`)
	require.NoError(t, err)
	assert.True(t, d.Accepts("/api/"))
	assert.True(t, d.Accepts("/api/widgets/1"))
	assert.False(t, d.Accepts("/other"))
}

func TestFromPattern_CharClass(t *testing.T) {
	d, err := FromPattern(`^/v[0-9]+/?$`)
	require.NoError(t, err)
	assert.True(t, d.Accepts("/v1"))
	assert.True(t, d.Accepts("/v12/"))
	assert.False(t, d.Accepts("/vX"))
}

func TestFromPattern_InvalidSyntax(t *testing.T) {
	_, err := FromPattern(`(unclosed`)
	assert.Error(t, err)
}

func TestIsDisjoint_DisjointPatterns(t *testing.T) {
	a, err := FromPattern(`^/api/.*$`)
	require.NoError(t, err)
	b, err := FromPattern(`^/static/.*$`)
	require.NoError(t, err)
	assert.True(t, IsDisjoint(a, b))
}

func TestIsDisjoint_OverlappingPatterns(t *testing.T) {
	a, err := FromPattern(`^/api/.*$`)
	require.NoError(t, err)
	b, err := FromPattern(`^/api/v1$`)
	require.NoError(t, err)
	assert.False(t, IsDisjoint(a, b))
}

func TestComplement_FlipsAcceptance(t *testing.T) {
	d, err := FromPattern(`^/only$`)
	require.NoError(t, err)
	c := Complement(d)
	assert.True(t, c.Accepts("/other"))
	assert.False(t, c.Accepts("/only"))
}

func TestUnion_AcceptsEither(t *testing.T) {
	a, err := FromPattern(`^/a$`)
	require.NoError(t, err)
	b, err := FromPattern(`^/b$`)
	require.NoError(t, err)
	u := Union(a, b)
	assert.True(t, u.Accepts("/a"))
	assert.True(t, u.Accepts("/b"))
	assert.False(t, u.Accepts("/c"))
}

func TestIsEmpty_EmptyStringPatternIsNotEmpty(t *testing.T) {
	d, err := FromPattern(`a\bz`) // result unused; the assertions below check ^$, whose language is just the empty string
	_ = d
	_ = err

	empty, err := FromPattern(`^$`)
	require.NoError(t, err)
	assert.False(t, IsEmpty(empty)) // accepts the empty string
	assert.True(t, empty.Accepts(""))
}

func TestEverythingBut_ExcludesOriginal(t *testing.T) {
	d, err := FromPattern(`^/secret$`)
	require.NoError(t, err)
	e := EverythingBut(d)
	assert.True(t, IsDisjoint(d, e))
}
