package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_NeverOverwritesExplicitFalse(t *testing.T) {
	f := false
	m := &Merged{ByDomain: map[string][]*Rule{
		"example.com": {
			{RuleID: "r1", Actions: Action{HTTPSRedirection: &f}},
			{RuleID: "r2", Actions: Action{}},
			{RuleID: "r3", Actions: Action{Redirect: &Redirect{Type: RedirectTemporary}}},
		},
	}}

	ApplyDefaults(m, true)

	rules := m.ByDomain["example.com"]
	require.NotNil(t, rules[0].Actions.HTTPSRedirection)
	assert.False(t, *rules[0].Actions.HTTPSRedirection)

	require.NotNil(t, rules[1].Actions.HTTPSRedirection)
	assert.True(t, *rules[1].Actions.HTTPSRedirection)

	assert.Nil(t, rules[2].Actions.HTTPSRedirection, "rule with an explicit redirect action gets no implicit https_redirection")
}

func TestApplyDefaults_NoopWhenGlobalDefaultDisabled(t *testing.T) {
	m := &Merged{ByDomain: map[string][]*Rule{
		"example.com": {{RuleID: "r1", Actions: Action{}}},
	}}
	ApplyDefaults(m, false)
	assert.Nil(t, m.ByDomain["example.com"][0].Actions.HTTPSRedirection)
}

func TestMerge_AssignsStableRuleIDsInDomainOrder(t *testing.T) {
	docA := &Document{SourceFile: "a.yml", ByDomain: map[string][]*rawRule{
		"example.com": {{Description: "Foo"}},
	}}
	docB := &Document{SourceFile: "b.yml", ByDomain: map[string][]*rawRule{
		"example.com": {{Description: "Foo"}},
	}}

	order := DomainOrder([]*Document{docA, docB})
	merged := Merge([]*Document{docA, docB}, order)

	require.Len(t, merged.ByDomain["example.com"], 2)
	assert.Equal(t, "foo", merged.ByDomain["example.com"][0].RuleID)
	assert.Equal(t, "foo_2", merged.ByDomain["example.com"][1].RuleID)
	assert.Equal(t, "a.yml", merged.ByDomain["example.com"][0].SourceFile)
	assert.Equal(t, "b.yml", merged.ByDomain["example.com"][1].SourceFile)
}
