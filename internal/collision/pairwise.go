package collision

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/svt/orm/internal/collision/automaton"
	"github.com/svt/orm/internal/collision/cache"
	"github.com/svt/orm/internal/diag"
	"github.com/svt/orm/internal/model"
	"github.com/svt/orm/internal/rules"
)

// Collision is one reported overlap between two rules in the same
// domain (spec.md §4.4 "Pairwise check", P4 collision symmetry).
type Collision struct {
	Domain string
	A, B   *rules.Rule
}

// Engine runs the Collision Engine over a merged rule set: building
// one path automaton per rule (optionally through a persistent cache),
// then checking every unordered same-domain pair for non-disjointness.
type Engine struct {
	Workers int
	Cache   *cache.Store // nil disables the persistent cache
}

// Check implements spec.md §4.4 end to end and enforces the
// "per domain, at most one rule has domain_default: true" constraint
// that belongs next to it (both are the Collision Engine's
// responsibility per §4.4's "Failure semantics").
func (e *Engine) Check(ctx context.Context, m *rules.Merged) ([]Collision, *diag.Report, error) {
	report := &diag.Report{}
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	built, err := e.buildAutomata(ctx, m, workers)
	if err != nil {
		return nil, nil, err
	}

	var collisions []Collision
	for domain, list := range m.ByDomain {
		checkDomainDefault(domain, list, report)

		var nonDefault []*rules.Rule
		for _, r := range list {
			if !r.DomainDefault {
				nonDefault = append(nonDefault, r)
			}
		}
		domainCollisions, err := pairwiseCheck(ctx, workers, domain, nonDefault, built)
		if err != nil {
			return nil, nil, err
		}
		collisions = append(collisions, domainCollisions...)
	}

	colliding := make(map[*rules.Rule]bool, len(collisions)*2)
	for _, c := range collisions {
		report.Fatal(diag.KindConstraint, diag.Location{File: c.A.SourceFile},
			"rule %q (%s) collides with rule %q (%s) on domain %s: paths can overlap",
			c.A.RuleID, c.A.SourceFile, c.B.RuleID, c.B.SourceFile, c.Domain)
		colliding[c.A] = true
		colliding[c.B] = true
	}

	if e.Cache != nil {
		for _, list := range m.ByDomain {
			for _, r := range list {
				if colliding[r] {
					e.Cache.Discard(cacheKey(domainOf(m, r), r))
				}
			}
		}
		if err := e.Cache.Flush(ctx); err != nil {
			return nil, nil, fmt.Errorf("collision: flushing FSM cache: %w", err)
		}
	}

	return collisions, report, nil
}

// builtAutomaton pairs a rule with its projected path DFA.
type builtAutomaton struct {
	rule *rules.Rule
	dfa  *automaton.DFA
}

func (e *Engine) buildAutomata(ctx context.Context, m *rules.Merged, workers int) (map[*rules.Rule]*automaton.DFA, error) {
	type job struct {
		domain string
		rule   *rules.Rule
	}
	var jobs []job
	for domain, list := range m.ByDomain {
		for _, r := range list {
			if r.DomainDefault {
				continue // spec.md §4.4: domain_default rules are excluded from FSM construction
			}
			jobs = append(jobs, job{domain, r})
		}
	}

	results := make([]builtAutomaton, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			key := cacheKey(j.domain, j.rule)

			if e.Cache != nil {
				if d, ok, err := e.Cache.Get(gctx, key); err == nil && ok {
					results[i] = builtAutomaton{j.rule, d}
					e.Cache.Stage(key, model.Canonical(j.rule.Matches), d)
					return nil
				}
			}

			d, err := Project(gctx, workers, j.rule.Matches)
			if err != nil {
				return fmt.Errorf("collision: rule %q: %w", j.rule.RuleID, err)
			}
			results[i] = builtAutomaton{j.rule, d}
			if e.Cache != nil {
				e.Cache.Stage(key, model.Canonical(j.rule.Matches), d)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[*rules.Rule]*automaton.DFA, len(results))
	for _, r := range results {
		out[r.rule] = r.dfa
	}
	return out, nil
}

// pairwiseCheck implements "for every unordered pair (a, b) with
// a.domain == b.domain, submit an intersection-nonempty job to the
// pool ... report every colliding pair".
func pairwiseCheck(ctx context.Context, workers int, domain string, list []*rules.Rule, built map[*rules.Rule]*automaton.DFA) ([]Collision, error) {
	type pair struct{ a, b *rules.Rule }
	var pairs []pair
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			pairs = append(pairs, pair{list[i], list[j]})
		}
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	results := make([]*Collision, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if !automaton.IsDisjoint(built[p.a], built[p.b]) {
				results[i] = &Collision{Domain: domain, A: p.a, B: p.b}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Collision
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// checkDomainDefault enforces "per domain, at most one rule has
// domain_default: true" (domain_default: false is already rejected
// earlier, by the rule parser — spec.md §4.2 rule).
func checkDomainDefault(domain string, list []*rules.Rule, report *diag.Report) {
	var defaults []*rules.Rule
	for _, r := range list {
		if r.DomainDefault {
			defaults = append(defaults, r)
		}
	}
	if len(defaults) <= 1 {
		return
	}
	for i := 1; i < len(defaults); i++ {
		report.Fatal(diag.KindConstraint, diag.Location{File: defaults[i].SourceFile},
			"rule %q sets domain_default: true on domain %s, but rule %q (%s) already does",
			defaults[i].RuleID, domain, defaults[0].RuleID, defaults[0].SourceFile)
	}
}

func cacheKey(domain string, r *rules.Rule) string {
	return domain + "||" + model.Canonical(r.Matches)
}

func domainOf(m *rules.Merged, r *rules.Rule) string {
	for domain, list := range m.ByDomain {
		for _, candidate := range list {
			if candidate == r {
				return domain
			}
		}
	}
	return ""
}
