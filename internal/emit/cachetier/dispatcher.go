package cachetier

import (
	"fmt"

	"github.com/svt/orm/internal/globals"
	"github.com/svt/orm/internal/rules"
)

// matchedTag is the per-rule tag variable convention this back-end
// uses to "tie response-phase defaults to request-phase match"
// (spec.md §4.5's own wording, without naming the tag): each rule's
// guard block, if it matches, sets this variable to the rule's id; the
// domain-level default block checks it to decide whether any
// non-default rule already handled the request.
const matchedTag = "ormc_matched"

// RuleBlock is one rule lowered for the cache tier: a guard expression
// plus the ordered statement bins spec.md §4.5 calls sb/nb/synth.
type RuleBlock struct {
	RuleID    string
	Guard     *Expr
	Bins      Bins
	IsDefault bool
}

// DomainConfig is everything the cache-tier template needs for one
// domain: the ordered rule blocks (non-default rules first, the
// domain_default rule — if any — emitted last so it only ever applies
// when nothing else matched) plus the two global action subroutines.
type DomainConfig struct {
	Domain       string
	Rules        []RuleBlock
	GlobalSB     []Statement
	GlobalNB     []Statement
	MatchedTag   string
}

// LowerDomain builds one domain's DomainConfig from its ordered rule
// list (already collision-checked and domain_default-validated by the
// Collision Engine).
func LowerDomain(domain string, ruleList []*rules.Rule) (*DomainConfig, error) {
	cfg := &DomainConfig{Domain: domain, MatchedTag: matchedTag}

	var defaultBlock *RuleBlock
	for _, r := range ruleList {
		guard, err := LowerGuard(r.Matches)
		if err != nil {
			return nil, fmt.Errorf("cachetier: rule %q: %w", r.RuleID, err)
		}
		bins, err := LowerActions(r.Actions)
		if err != nil {
			return nil, fmt.Errorf("cachetier: rule %q: %w", r.RuleID, err)
		}
		block := RuleBlock{RuleID: r.RuleID, Guard: guard, Bins: bins, IsDefault: r.DomainDefault}
		if r.DomainDefault {
			b := block
			defaultBlock = &b
			continue
		}
		cfg.Rules = append(cfg.Rules, block)
	}
	if defaultBlock != nil {
		cfg.Rules = append(cfg.Rules, *defaultBlock)
	}

	return cfg, nil
}

// LowerGlobalActions turns Globals.GlobalActions into the two
// unconditional statement lists spec.md §4.5 describes: "Global
// actions are emitted into two unconditional subroutines run before
// per-rule action blocks."
func LowerGlobalActions(ga globals.GlobalActions) (sb, nb []Statement) {
	for i := range ga.Southbound {
		op := ga.Southbound[i]
		sb = append(sb, Statement{Kind: KindHeaderSouthbound, HeaderOp: &rules.HeaderOp{
			Op: op.Op, Name: op.Name, Value: op.Value,
		}})
	}
	for i := range ga.Northbound {
		op := ga.Northbound[i]
		nb = append(nb, Statement{Kind: KindHeaderNorthbound, HeaderOp: &rules.HeaderOp{
			Op: op.Op, Name: op.Name, Value: op.Value,
		}})
	}
	return sb, nb
}
