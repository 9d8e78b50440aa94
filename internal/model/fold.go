package model

// Fold traverses t, dispatching to onMatch for leaves and onCondition
// for all/any nodes. Negation never reaches either hook directly: a Not
// node flips an accumulator (negate) that is threaded down through the
// recursion and surfaces as the negate argument at the next leaf or
// condition-list call site. This mirrors the "visitor carries a negate
// flag flipped on each not" design spec.md §4.1 calls for, and lets the
// collision engine and both emitters share one traversal instead of
// each re-implementing not-pushdown.
//
// onMatch receives the leaf's source, function, input, and whether it
// is negated. It returns an arbitrary per-leaf result R.
//
// onCondition receives the already-folded results of op's children (in
// order), op itself, and whether this condition list is negated. It
// returns the combined result R.
func Fold[R any](
	t *Tree,
	onMatch func(src Source, fn Function, in Input, negate bool) R,
	onCondition func(children []R, op Op, negate bool) R,
) R {
	return fold(t, false, onMatch, onCondition)
}

func fold[R any](
	t *Tree,
	negate bool,
	onMatch func(src Source, fn Function, in Input, negate bool) R,
	onCondition func(children []R, op Op, negate bool) R,
) R {
	switch t.Kind {
	case KindNot:
		return fold(t.Child, !negate, onMatch, onCondition)
	case KindCondition:
		results := make([]R, len(t.Children))
		for i, c := range t.Children {
			results[i] = fold(c, false, onMatch, onCondition)
		}
		return onCondition(results, t.Op, negate)
	default: // KindMatch
		return onMatch(t.Source, t.Function, t.Input, negate)
	}
}

// Walk is a side-effecting convenience over Fold for callers that only
// need to visit nodes (e.g. collecting path leaves) without building a
// combined result.
func Walk(t *Tree, onMatch func(src Source, fn Function, in Input, negate bool), onCondition func(op Op, negate bool)) {
	Fold[struct{}](t,
		func(src Source, fn Function, in Input, negate bool) struct{} {
			onMatch(src, fn, in, negate)
			return struct{}{}
		},
		func(children []struct{}, op Op, negate bool) struct{} {
			onCondition(op, negate)
			return struct{}{}
		},
	)
}
