package formats

import (
	"unicode"

	"github.com/svt/orm/internal/collision/automaton"
)

// ORMRegex implements the orm_regex format (spec.md §4.3): parses as a
// regular expression in the extended Kleene-algebra dialect the
// Collision Engine consumes. Sharing automaton.ValidatePattern means an
// author-supplied paths.regex value that passes schema validation is
// guaranteed buildable into an FSM later (spec.md §4: "one regex string
// is validated twice ... so the two checks can never disagree").
func ORMRegex(value string) bool {
	return automaton.ValidatePattern(value) == nil
}

// ORMRegsub implements the orm_regsub format (spec.md §4.3): only
// non-control printable Unicode.
func ORMRegsub(value string) bool {
	for _, r := range value {
		if unicode.IsControl(r) {
			return false
		}
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
