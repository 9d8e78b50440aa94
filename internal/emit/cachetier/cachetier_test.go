package cachetier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svt/orm/internal/globals"
	"github.com/svt/orm/internal/model"
	"github.com/svt/orm/internal/rules"
)

func TestLowerGuard_PathExactIsAnchoredBothSides(t *testing.T) {
	tree := model.All(model.Match(model.SourcePath, model.FuncExact, model.Input{Value: `/a"b`}))
	e, err := LowerGuard(tree)
	require.NoError(t, err)
	require.Equal(t, ExprAnd, e.Kind)
	leaf := e.Children[0].Leaf
	assert.Contains(t, leaf.Pattern, `^`)
	assert.Contains(t, leaf.Pattern, `$`)
	assert.Contains(t, leaf.Pattern, `\x22`)
}

func TestLowerGuard_NotFlipsToExprNot(t *testing.T) {
	tree := model.Not(model.All(model.Match(model.SourcePath, model.FuncBeginsWith, model.Input{Value: "/api"})))
	e, err := LowerGuard(tree)
	require.NoError(t, err)
	assert.Equal(t, ExprNot, e.Kind)
}

func TestLowerGuard_DomainUsesHostField(t *testing.T) {
	tree := model.All(model.Match(model.SourceDomain, model.FuncExact, model.Input{Value: "example.com"}))
	e, err := LowerGuard(tree)
	require.NoError(t, err)
	leaf := e.Children[0].Leaf
	assert.Equal(t, "req.http.Host", leaf.Field)
	assert.Equal(t, "==", leaf.Op)
}

func TestLowerActions_FixedOrderInSBRegardlessOfSourceOrder(t *testing.T) {
	v := true
	a := rules.Action{
		Backend:          &rules.Backend{Name: "api", Scheme: "https", Origins: []string{"origin.internal"}},
		HTTPSRedirection: &v,
		HeaderSouthbound: []rules.HeaderOp{{Op: "set", Name: "X-Test", Value: "1"}},
	}
	bins, err := LowerActions(a)
	require.NoError(t, err)
	require.Len(t, bins.SB, 3)
	assert.Equal(t, KindHTTPSRedirection, bins.SB[0].Kind)
	assert.Equal(t, KindHeaderSouthbound, bins.SB[1].Kind)
	assert.Equal(t, KindBackend, bins.SB[2].Kind)
}

func TestLowerActions_SyntheticAndRedirectGoToSynth(t *testing.T) {
	a := rules.Action{
		SyntheticResponse: &rules.SyntheticResponse{Status: 200, Body: "ok"},
		Redirect:          &rules.Redirect{Type: rules.RedirectPermanent},
	}
	bins, err := LowerActions(a)
	require.NoError(t, err)
	require.Len(t, bins.Synth, 2)
	assert.Equal(t, KindSyntheticResponse, bins.Synth[0].Kind)
	assert.Equal(t, KindRedirect, bins.Synth[1].Kind)
	assert.Equal(t, 308, bins.Synth[1].Redirect.Status)
}

func TestLowerActions_RejectsUnknownRedirectType(t *testing.T) {
	a := rules.Action{Redirect: &rules.Redirect{Type: rules.RedirectType("bogus")}}
	_, err := LowerActions(a)
	assert.Error(t, err)
}

func TestLowerDomain_DefaultRuleEmittedLast(t *testing.T) {
	leaf := model.All(model.Match(model.SourcePath, model.FuncExact, model.Input{Value: "/x"}))
	ruleList := []*rules.Rule{
		{RuleID: "default_rule", DomainDefault: true, Matches: leaf},
		{RuleID: "specific_rule", Matches: leaf},
	}
	cfg, err := LowerDomain("example.com", ruleList)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "specific_rule", cfg.Rules[0].RuleID)
	assert.Equal(t, "default_rule", cfg.Rules[1].RuleID)
	assert.Equal(t, matchedTag, cfg.MatchedTag)
}

func TestLowerGuard_QueryExactUsesBoundedCombinedPattern(t *testing.T) {
	tree := model.All(model.Match(model.SourceQuery, model.FuncExact, model.Input{Parameter: "id", Value: "7"}))
	e, err := LowerGuard(tree)
	require.NoError(t, err)
	leaf := e.Children[0].Leaf
	assert.Equal(t, queryField, leaf.Field)
	assert.Equal(t, "~", leaf.Op)
	assert.Contains(t, leaf.Pattern, `(^|&)id=7(&|$)`)
}

func TestLowerGuard_QueryBeginsWithInsertsWildcardBeforeEnd(t *testing.T) {
	tree := model.All(model.Match(model.SourceQuery, model.FuncBeginsWith, model.Input{Parameter: "q", Value: "ab"}))
	e, err := LowerGuard(tree)
	require.NoError(t, err)
	leaf := e.Children[0].Leaf
	assert.Contains(t, leaf.Pattern, `(^|&)q=ab[^&]*(&|$)`)
}

func TestLowerGuard_QueryContainsWrapsValueInWildcardsBothSides(t *testing.T) {
	tree := model.All(model.Match(model.SourceQuery, model.FuncContains, model.Input{Parameter: "q", Value: "mid"}))
	e, err := LowerGuard(tree)
	require.NoError(t, err)
	leaf := e.Children[0].Leaf
	assert.Contains(t, leaf.Pattern, `(^|&)q=[^&]*mid[^&]*(&|$)`)
}

func TestLowerGuard_QueryExistOmitsValueAndEquals(t *testing.T) {
	tree := model.All(model.Match(model.SourceQuery, model.FuncExist, model.Input{Parameter: "flag"}))
	e, err := LowerGuard(tree)
	require.NoError(t, err)
	leaf := e.Children[0].Leaf
	assert.Equal(t, queryField, leaf.Field)
	assert.Contains(t, leaf.Pattern, `(^|&)flag(=|&|$)`)
	assert.NotContains(t, leaf.Pattern, "=[^&]")
}

func TestLowerGlobalActions_SplitsBySoutboundNorthbound(t *testing.T) {
	ga := globals.GlobalActions{
		Southbound: []globals.HeaderOp{{Op: "set", Name: "X-SB", Value: "1"}},
		Northbound: []globals.HeaderOp{{Op: "add", Name: "X-NB", Value: "2"}},
	}
	sb, nb := LowerGlobalActions(ga)
	require.Len(t, sb, 1)
	require.Len(t, nb, 1)
	assert.Equal(t, "X-SB", sb[0].HeaderOp.Name)
	assert.Equal(t, "X-NB", nb[0].HeaderOp.Name)
}
