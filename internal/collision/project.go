// Package collision implements the engine spec.md §4.4 calls "the
// hardest part": projecting each rule's match tree onto the path
// dimension as a finite automaton, then pairwise intersecting those
// automata within a domain to detect overlapping rules.
package collision

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/svt/orm/internal/collision/automaton"
	"github.com/svt/orm/internal/collision/pool"
	"github.com/svt/orm/internal/model"
)

// leaf is the per-node result Project folds a match tree into: either
// a concrete path automaton, or the identity marker for a node that
// carries no path information at all (a non-path leaf, or a condition
// built entirely from such leaves) — spec.md §4.4: "A leaf whose
// source is not path contributes None (absorbed as identity by its
// operator)."
type leaf struct {
	dfa      *automaton.DFA
	identity bool
}

// Project folds t's path-relevant structure into a single DFA: `and`
// combines by intersection, `or` by union, `not` by complement over
// the fixed printable-ASCII alphabet, and non-path leaves vanish as
// each operator's identity element. A tree with no path predicates at
// all projects to the universal automaton (spec.md §4.4: "A path-free
// tree yields the universal FSM `.*`"), since such a rule's path
// constraint is vacuously true for every path.
func Project(ctx context.Context, workers int, t *model.Tree) (*automaton.DFA, error) {
	var buildErr error

	result := model.Fold[leaf](t,
		func(src model.Source, fn model.Function, in model.Input, negate bool) leaf {
			if buildErr != nil {
				return leaf{identity: true}
			}
			if src != model.SourcePath {
				return leaf{identity: true}
			}
			pattern, err := projectPattern(fn, in)
			if err != nil {
				buildErr = err
				return leaf{identity: true}
			}
			d, err := automaton.FromPattern(pattern)
			if err != nil {
				buildErr = fmt.Errorf("collision: building automaton for pattern %q: %w", pattern, err)
				return leaf{identity: true}
			}
			if negate {
				d = automaton.Complement(d)
			}
			return leaf{dfa: d}
		},
		func(children []leaf, op model.Op, negate bool) leaf {
			if buildErr != nil {
				return leaf{identity: true}
			}
			combined, err := combine(ctx, workers, children, op)
			if err != nil {
				buildErr = err
				return leaf{identity: true}
			}
			if negate && !combined.identity {
				combined.dfa = automaton.Complement(combined.dfa)
			}
			return combined
		},
	)

	if buildErr != nil {
		return nil, buildErr
	}
	if result.identity {
		return universal(), nil
	}
	return result.dfa, nil
}

// combine implements spec.md §4.4's "within a condition list of n
// FSMs, combine by balanced divide-and-conquer" via pool.Combine,
// after filtering out this operator's identity elements (non-path
// leaves and path-free sub-conditions).
func combine(ctx context.Context, workers int, children []leaf, op model.Op) (leaf, error) {
	var dfas []*automaton.DFA
	for _, c := range children {
		if !c.identity {
			dfas = append(dfas, c.dfa)
		}
	}
	if len(dfas) == 0 {
		return leaf{identity: true}, nil
	}
	combineFn := automaton.Union
	if op == model.OpAll {
		combineFn = automaton.Intersect
	}
	result, err := pool.Combine(ctx, workers, dfas, func(a, b *automaton.DFA) (*automaton.DFA, error) {
		return combineFn(a, b), nil
	})
	if err != nil {
		return leaf{}, err
	}
	return leaf{dfa: result}, nil
}

func universal() *automaton.DFA {
	d, err := automaton.FromPattern(".*")
	if err != nil {
		// ".*" is always a legal pattern over this package's dialect;
		// a failure here would mean the automaton package itself is broken.
		panic(fmt.Sprintf("collision: universal pattern rejected: %v", err))
	}
	return d
}

// projectPattern turns one path leaf's function/value into the
// regexp/syntax-dialect pattern automaton.FromPattern consumes. The
// automaton model already matches a whole string end-to-end (spec.md
// §4.4's FSMs describe full paths, not substrings being searched), so
// no ^/$ anchoring is added here — begins_with/ends_with/contains
// instead splice in an explicit `.*` on the unconstrained side.
func projectPattern(fn model.Function, in model.Input) (string, error) {
	var body string
	switch fn {
	case model.FuncExact:
		body = regexp.QuoteMeta(in.Value)
	case model.FuncBeginsWith:
		body = regexp.QuoteMeta(in.Value) + ".*"
	case model.FuncEndsWith:
		body = ".*" + regexp.QuoteMeta(in.Value)
	case model.FuncContains:
		body = ".*" + regexp.QuoteMeta(in.Value) + ".*"
	case model.FuncRegex:
		body = in.Value
	default:
		return "", fmt.Errorf("collision: function %q is not a path predicate", fn)
	}
	if in.IgnoreCase && !strings.HasPrefix(body, "(?i)") {
		body = "(?i)" + body
	}
	return body, nil
}
