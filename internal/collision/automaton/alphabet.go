// Package automaton builds and combines finite-state automata over
// regular expressions projected from path match-tree leaves (spec.md
// §4.4). It is the hard-engineering core of the Collision Engine: NFA
// construction via Thompson's construction over Go's regexp/syntax AST,
// subset construction to a DFA, and DFA product-intersection /
// complement for the set-algebra spec.md §4.4 needs
// (∩, ∪, everythingbut, isdisjoint).
package automaton

import "regexp/syntax"

// Alphabet is the finite symbol set every automaton in this package is
// built over: printable ASCII (spec.md §4.4: "Paths are strings over
// printable ASCII"). Complementing an automaton (spec.md's
// everythingbut()) is only well-defined relative to a fixed alphabet;
// this is it.
const (
	AlphabetLo = 0x20
	AlphabetHi = 0x7E
)

// Alphabet returns every symbol in the fixed alphabet, in order — used
// to build complement transitions (a missing transition from a DFA
// state implicitly goes to a dead state; complementing flips accept
// state membership over exactly this symbol set).
func Alphabet() []byte {
	out := make([]byte, 0, AlphabetHi-AlphabetLo+1)
	for c := AlphabetLo; c <= AlphabetHi; c++ {
		out = append(out, byte(c))
	}
	return out
}

// syntaxFlags is shared by every regexp/syntax.Parse call in this
// package and by the orm_regex format checker
// (internal/schema/formats/ormregex.go), so the schema validator's
// "is this pattern syntactically legal" check and the collision
// engine's "can I build an automaton from this pattern" check can never
// disagree about what is accepted (spec.md §4 supplement: orm_regex
// validates the same dialect the Collision Engine consumes).
const syntaxFlags = syntax.Perl

// ValidatePattern reports whether pattern parses as a legal regular
// expression in the dialect this package builds automata from.
func ValidatePattern(pattern string) error {
	_, err := syntax.Parse(pattern, syntaxFlags)
	return err
}
