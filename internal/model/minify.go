package model

// Minify rewrites t bottom-up into the canonical minimized form required
// by spec.md §4.1 / §3 invariants I2, I3, I5:
//
//   - M1: an all/any of exactly one child collapses to that child.
//   - M2: not(not(x)) collapses to x.
//   - M3: an identical nested operator is flattened — and(and(a,b), c)
//     becomes and(a,b,c) — which keeps test-scenario trees deterministic
//     (spec.md calls this optional but determinism-preserving; we always
//     apply it for that reason).
//
// Minify is idempotent: Minify(Minify(t)) produces a tree equal (by
// Equal) to Minify(t) (spec.md P2).
func Minify(t *Tree) *Tree {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindNot:
		child := Minify(t.Child)
		if child.Kind == KindNot {
			return child.Child // M2
		}
		return Not(child)

	case KindCondition:
		flat := make([]*Tree, 0, len(t.Children))
		for _, c := range t.Children {
			mc := Minify(c)
			if mc.Kind == KindCondition && mc.Op == t.Op {
				flat = append(flat, mc.Children...) // M3
			} else {
				flat = append(flat, mc)
			}
		}
		if len(flat) == 1 {
			return flat[0] // M1
		}
		return Condition(t.Op, flat...)

	default: // KindMatch
		return &Tree{Kind: KindMatch, Source: t.Source, Function: t.Function, Input: t.Input}
	}
}

// Equal reports whether a and b are structurally identical after both
// have been minified (or are already canonical). Only the tests call
// it; the FSM cache keys on the canonical serialization instead.
func Equal(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNot:
		return Equal(a.Child, b.Child)
	case KindCondition:
		if a.Op != b.Op || len(a.Children) != len(b.Children) {
			return false
		}
		for i := range a.Children {
			if !Equal(a.Children[i], b.Children[i]) {
				return false
			}
		}
		return true
	default:
		return a.Source == b.Source && a.Function == b.Function && a.Input == b.Input
	}
}
