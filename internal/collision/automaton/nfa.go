package automaton

import (
	"regexp/syntax"
)

// nfa is an epsilon-NFA over byte symbols, built by Thompson's
// construction from a regexp/syntax AST. It always has exactly one
// start state and one accept state (fragments are spliced together
// with epsilon transitions rather than patch lists, trading a few
// extra states for simplicity).
type nfa struct {
	states []nfaState
	start  int
	accept int
}

type nfaState struct {
	epsilon []int
	byRange []byteRange
}

type byteRange struct {
	lo, hi byte
	to     int
}

func newNFABuilder() *nfa {
	return &nfa{}
}

func (n *nfa) newState() int {
	n.states = append(n.states, nfaState{})
	return len(n.states) - 1
}

func (n *nfa) addEpsilon(from, to int) {
	n.states[from].epsilon = append(n.states[from].epsilon, to)
}

func (n *nfa) addByteRange(from int, lo, hi byte, to int) {
	n.states[from].byRange = append(n.states[from].byRange, byteRange{lo: lo, hi: hi, to: to})
}

// frag is a single-entry single-exit NFA fragment.
type frag struct {
	start, accept int
}

// compileNFA builds the Thompson-construction NFA for re (already
// Simplify()-ed by the caller).
func compileNFA(re *syntax.Regexp) *nfa {
	n := newNFABuilder()
	f := n.compile(re)
	n.start = f.start
	n.accept = f.accept
	return n
}

func (n *nfa) compile(re *syntax.Regexp) frag {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText, syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		// Zero-width assertions are no-ops under this package's
		// whole-string acceptance model (spec.md §4.4 builds one FSM
		// per rule representing exactly the strings the rule's path
		// predicate matches in full, not a substring search — so ^/$
		// are trivially satisfied at position 0 / len(s)). Documented
		// limitation: multi-line ^/$ behave identically to ^/$ here.
		s, e := n.newState(), n.newState()
		n.addEpsilon(s, e)
		return frag{s, e}

	case syntax.OpNoMatch:
		s, e := n.newState(), n.newState()
		return frag{s, e} // no edge s->e: unreachable, language is empty

	case syntax.OpLiteral:
		return n.compileLiteral(re)

	case syntax.OpCharClass:
		return n.compileCharClass(re)

	case syntax.OpAnyChar:
		s, e := n.newState(), n.newState()
		n.addByteRange(s, 0x00, 0xFF, e)
		return frag{s, e}

	case syntax.OpAnyCharNotNL:
		s, e := n.newState(), n.newState()
		n.addByteRange(s, 0x00, 0x09, e)
		n.addByteRange(s, 0x0B, 0xFF, e)
		return frag{s, e}

	case syntax.OpCapture:
		return n.compile(re.Sub[0])

	case syntax.OpStar:
		return n.compileStar(re.Sub[0])

	case syntax.OpPlus:
		return n.compilePlus(re.Sub[0])

	case syntax.OpQuest:
		return n.compileQuest(re.Sub[0])

	case syntax.OpRepeat:
		return n.compileRepeat(re)

	case syntax.OpConcat:
		return n.compileConcat(re.Sub)

	case syntax.OpAlternate:
		return n.compileAlternate(re.Sub)

	default:
		// Unsupported op (e.g. exotic Unicode-script classes): treat as
		// matching nothing rather than panicking mid-run.
		s, e := n.newState(), n.newState()
		return frag{s, e}
	}
}

func (n *nfa) compileLiteral(re *syntax.Regexp) frag {
	s := n.newState()
	cur := s
	for _, r := range re.Rune {
		next := n.newState()
		if re.Flags&syntax.FoldCase != 0 {
			lo, hi := foldedByteRange(r)
			n.addByteRange(cur, lo, hi, next)
			if lo2, hi2, ok := foldedByteRangeAlt(r); ok {
				n.addByteRange(cur, lo2, hi2, next)
			}
		} else {
			b := runeToByte(r)
			n.addByteRange(cur, b, b, next)
		}
		cur = next
	}
	return frag{s, cur}
}

func (n *nfa) compileCharClass(re *syntax.Regexp) frag {
	s, e := n.newState(), n.newState()
	for i := 0; i+1 < len(re.Rune); i += 2 {
		lo, hi := re.Rune[i], re.Rune[i+1]
		blo, bhi := runeToByte(lo), runeToByte(hi)
		n.addByteRange(s, blo, bhi, e)
	}
	return frag{s, e}
}

func (n *nfa) compileConcat(subs []*syntax.Regexp) frag {
	if len(subs) == 0 {
		s, e := n.newState(), n.newState()
		n.addEpsilon(s, e)
		return frag{s, e}
	}
	first := n.compile(subs[0])
	cur := first
	for _, sub := range subs[1:] {
		next := n.compile(sub)
		n.addEpsilon(cur.accept, next.start)
		cur = frag{first.start, next.accept}
	}
	return cur
}

func (n *nfa) compileAlternate(subs []*syntax.Regexp) frag {
	s, e := n.newState(), n.newState()
	for _, sub := range subs {
		f := n.compile(sub)
		n.addEpsilon(s, f.start)
		n.addEpsilon(f.accept, e)
	}
	return frag{s, e}
}

func (n *nfa) compileStar(sub *syntax.Regexp) frag {
	s, e := n.newState(), n.newState()
	inner := n.compile(sub)
	n.addEpsilon(s, inner.start)
	n.addEpsilon(s, e)
	n.addEpsilon(inner.accept, inner.start)
	n.addEpsilon(inner.accept, e)
	return frag{s, e}
}

func (n *nfa) compilePlus(sub *syntax.Regexp) frag {
	inner := n.compile(sub)
	e := n.newState()
	n.addEpsilon(inner.accept, inner.start)
	n.addEpsilon(inner.accept, e)
	return frag{inner.start, e}
}

func (n *nfa) compileQuest(sub *syntax.Regexp) frag {
	s, e := n.newState(), n.newState()
	inner := n.compile(sub)
	n.addEpsilon(s, inner.start)
	n.addEpsilon(s, e)
	n.addEpsilon(inner.accept, e)
	return frag{s, e}
}

// compileRepeat handles {min,max} bounded/unbounded repetition by
// unrolling: min mandatory copies, then either (max-min) optional
// copies or, when Max == -1, a trailing star.
func (n *nfa) compileRepeat(re *syntax.Regexp) frag {
	sub := re.Sub[0]
	s := n.newState()
	cur := s
	for i := 0; i < re.Min; i++ {
		f := n.compile(sub)
		n.addEpsilon(cur, f.start)
		cur = f.accept
	}

	if re.Max == -1 {
		star := n.compileStar(sub)
		n.addEpsilon(cur, star.start)
		return frag{s, star.accept}
	}

	e := n.newState()
	n.addEpsilon(cur, e)
	for i := re.Min; i < re.Max; i++ {
		f := n.compile(sub)
		n.addEpsilon(cur, f.start)
		n.addEpsilon(f.accept, e)
		cur = f.accept
	}
	return frag{s, e}
}

// runeToByte clips a rune onto this package's byte-oriented automata.
// Regex authors are expected to write ASCII path patterns (spec.md
// §4.4: "Paths are strings over printable ASCII"); runes above 0xFF
// are clipped to 0xFF, which only affects patterns using non-ASCII
// literals/classes, a documented limitation rather than a silent
// correctness bug for the in-scope alphabet.
func runeToByte(r rune) byte {
	if r > 0xFF {
		return 0xFF
	}
	if r < 0 {
		return 0
	}
	return byte(r)
}

// foldedByteRange/foldedByteRangeAlt implement ASCII case folding for
// FoldCase literals: a letter matches both its upper and lower form.
func foldedByteRange(r rune) (byte, byte) {
	b := runeToByte(r)
	return b, b
}

func foldedByteRangeAlt(r rune) (byte, byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		b := byte(r - 'a' + 'A')
		return b, b, true
	case r >= 'A' && r <= 'Z':
		b := byte(r - 'A' + 'a')
		return b, b, true
	default:
		return 0, 0, false
	}
}
