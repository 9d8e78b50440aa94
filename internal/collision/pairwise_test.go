package collision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svt/orm/internal/diag"
	"github.com/svt/orm/internal/model"
	"github.com/svt/orm/internal/rules"
)

func rule(id, file string, domainDefault bool, matches *model.Tree) *rules.Rule {
	return &rules.Rule{
		RuleID:        id,
		SourceFile:    file,
		Matches:       matches,
		DomainDefault: domainDefault,
	}
}

func TestEngine_Check_ReportsCollidingPair(t *testing.T) {
	a := rule("a", "a.yml", false, model.All(pathLeaf(model.FuncBeginsWith, "/api", false)))
	b := rule("b", "b.yml", false, model.All(pathLeaf(model.FuncExact, "/api/v1", false)))

	m := &rules.Merged{ByDomain: map[string][]*rules.Rule{
		"example.com": {a, b},
	}}

	e := &Engine{Workers: 2}
	collisions, report, err := e.Check(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, collisions, 1)
	assert.Equal(t, "example.com", collisions[0].Domain)
	assert.True(t, report.HasFatal())
}

func TestEngine_Check_NoCollisionAcrossDomains(t *testing.T) {
	a := rule("a", "a.yml", false, model.All(pathLeaf(model.FuncExact, "/same", false)))
	b := rule("b", "b.yml", false, model.All(pathLeaf(model.FuncExact, "/same", false)))

	m := &rules.Merged{ByDomain: map[string][]*rules.Rule{
		"a.example.com": {a},
		"b.example.com": {b},
	}}

	e := &Engine{Workers: 2}
	collisions, report, err := e.Check(context.Background(), m)
	require.NoError(t, err)
	assert.Empty(t, collisions)
	assert.False(t, report.HasFatal())
}

func TestEngine_Check_DomainDefaultExcludedFromCollisionCheck(t *testing.T) {
	// The domain_default catch-all legitimately overlaps every other
	// rule's paths; spec.md §4.4 excludes domain_default rules from FSM
	// construction entirely so this is never reported as a collision.
	a := rule("specific", "a.yml", false, model.All(pathLeaf(model.FuncBeginsWith, "/api", false)))
	def := rule("default_rule", "b.yml", true, model.All(pathLeaf(model.FuncRegex, ".*", false)))

	m := &rules.Merged{ByDomain: map[string][]*rules.Rule{
		"example.com": {a, def},
	}}

	e := &Engine{Workers: 2}
	collisions, report, err := e.Check(context.Background(), m)
	require.NoError(t, err)
	assert.Empty(t, collisions)
	assert.False(t, report.HasFatal())
}

func TestEngine_Check_RejectsMultipleDomainDefaults(t *testing.T) {
	a := rule("a", "a.yml", true, model.All(pathLeaf(model.FuncExact, "/a", false)))
	b := rule("b", "b.yml", true, model.All(pathLeaf(model.FuncExact, "/b", false)))

	m := &rules.Merged{ByDomain: map[string][]*rules.Rule{
		"example.com": {a, b},
	}}

	e := &Engine{Workers: 2}
	_, report, err := e.Check(context.Background(), m)
	require.NoError(t, err)
	require.True(t, report.HasFatal())

	found := false
	for _, d := range report.Diagnostics {
		if d.Kind == diag.KindConstraint {
			found = true
		}
	}
	assert.True(t, found)
}
