package automaton

import (
	"regexp/syntax"
	"strconv"
)

// DFA is a complete (total) deterministic automaton over this
// package's fixed alphabet (Alphabet()). "Complete" means every state
// has an outgoing transition for every symbol — in a DFA built by
// FromPattern, undefined transitions land on an explicit non-accepting
// trap state (state 0) rather than being absent, which is what makes
// Complement simply flipping Accept flags. DFAs derived by Complement or
// the product constructions stay total, but their state 0 is not
// necessarily a non-accepting trap.
type DFA struct {
	Start  int
	Accept []bool
	Trans  [][]int // Trans[state][symbolIndex] -> state
}

const trapState = 0

func symbolIndex(b byte) (int, bool) {
	if b < AlphabetLo || b > AlphabetHi {
		return 0, false
	}
	return int(b) - int(AlphabetLo), true
}

func numSymbols() int {
	return int(AlphabetHi) - int(AlphabetLo) + 1
}

// FromPattern parses pattern as a Go-syntax regular expression and
// builds the minimal-effort (unminimized, but total and deterministic)
// DFA recognizing exactly the strings it whole-matches over this
// package's alphabet.
func FromPattern(pattern string) (*DFA, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	re, err := syntax.Parse(pattern, syntaxFlags)
	if err != nil {
		return nil, err
	}
	re = re.Simplify()
	n := compileNFA(re)
	return determinize(n), nil
}

// epsilonClosure returns the set of NFA states reachable from seed
// states via zero or more epsilon transitions, as a sorted slice used
// as a map key.
func epsilonClosure(n *nfa, seeds []int) []int {
	seen := make(map[int]bool, len(seeds))
	var stack []int
	for _, s := range seeds {
		if !seen[s] {
			seen[s] = true
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.states[s].epsilon {
			if !seen[t] {
				seen[t] = true
				stack = append(stack, t)
			}
		}
	}
	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sortInts(out)
	return out
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func setKey(s []int) string {
	key := make([]byte, 0, len(s)*5)
	for _, v := range s {
		key = strconv.AppendInt(key, int64(v), 10)
		key = append(key, ',')
	}
	return string(key)
}

func containsAccept(n *nfa, states []int) bool {
	for _, s := range states {
		if s == n.accept {
			return true
		}
	}
	return false
}

// determinize performs subset construction over n, producing a total
// DFA with an explicit trap state at index 0.
func determinize(n *nfa) *DFA {
	numSym := numSymbols()
	dfa := &DFA{}
	// state 0 is always the trap: non-accepting, every symbol loops to itself.
	dfa.Accept = append(dfa.Accept, false)
	dfa.Trans = append(dfa.Trans, make([]int, numSym))

	type pending struct {
		nfaSet []int
		id     int
	}
	idOf := map[string]int{}
	var queue []pending

	startSet := epsilonClosure(n, []int{n.start})
	startKey := setKey(startSet)
	startID := dfa.newState(containsAccept(n, startSet))
	idOf[startKey] = startID
	dfa.Start = startID
	queue = append(queue, pending{startSet, startID})

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for symIdx := 0; symIdx < numSym; symIdx++ {
			b := byte(int(AlphabetLo) + symIdx)
			var moved []int
			for _, s := range cur.nfaSet {
				for _, r := range n.states[s].byRange {
					if b >= r.lo && b <= r.hi {
						moved = append(moved, r.to)
					}
				}
			}
			if len(moved) == 0 {
				dfa.Trans[cur.id][symIdx] = trapState
				continue
			}
			closure := epsilonClosure(n, moved)
			key := setKey(closure)
			id, ok := idOf[key]
			if !ok {
				id = dfa.newState(containsAccept(n, closure))
				idOf[key] = id
				queue = append(queue, pending{closure, id})
			}
			dfa.Trans[cur.id][symIdx] = id
		}
	}

	return dfa
}

func (d *DFA) newState(accept bool) int {
	d.Accept = append(d.Accept, accept)
	d.Trans = append(d.Trans, make([]int, numSymbols()))
	return len(d.Accept) - 1
}

// Step follows one transition; b must be within Alphabet(). For any
// other byte Step returns state 0, which is the trap state only in a
// DFA built by FromPattern.
func (d *DFA) Step(state int, b byte) int {
	idx, ok := symbolIndex(b)
	if !ok {
		return trapState
	}
	return d.Trans[state][idx]
}

// Accepts reports whether s, read over this package's alphabet, is
// accepted by d. A byte outside the alphabet rejects s outright.
func (d *DFA) Accepts(s string) bool {
	state := d.Start
	for i := 0; i < len(s); i++ {
		idx, ok := symbolIndex(s[i])
		if !ok {
			return false
		}
		state = d.Trans[state][idx]
	}
	return d.Accept[state]
}
