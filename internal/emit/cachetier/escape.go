package cachetier

import (
	"regexp"
	"strings"
)

// ev escapes a literal value for embedding inside a double-quoted VCL
// regex string: regexp.QuoteMeta handles the regex metacharacters, and
// the double-quote itself (not a regex metacharacter, but the string
// delimiter) is additionally escaped as \x22 (spec.md §6: "escape
// rules (\x22 for double-quote in regex ...)"). P7: for any printable
// ASCII s, "^"+ev(s)+"$" matches s and nothing else of the same
// length.
func ev(s string) string {
	escaped := regexp.QuoteMeta(s)
	return strings.ReplaceAll(escaped, `"`, `\x22`)
}

// quoteLongString renders a string literal for a VCL-style statement
// body, switching to the bracketed long-string form {"..."} whenever
// the plain double-quoted form would need escaping (spec.md §6:
// "long-string wrapping for \" and \"}"). Content containing the
// long-string terminator `"}` itself is split around each occurrence
// and rejoined as alternating long-string/plain-string segments that
// VCL concatenates back into the original bytes when adjacent string
// literals are parsed — the same trick as vcl_safe_string.
func quoteLongString(s string) string {
	s = strings.ReplaceAll(s, "\n", "")

	const terminator = `"}`
	parts := strings.Split(s, terminator)
	if len(parts) == 1 {
		if strings.Contains(parts[0], `"`) {
			return `{"` + s + `"}`
		}
		return `"` + s + `"`
	}

	// Each split point stood in for a literal `"}`; rejoining with
	// `""} "}" {"` keeps its `"` as the last byte of the long string
	// and closes it, restates the `}` as the plain string "}", then
	// reopens a long string for the next segment — VCL concatenates the
	// adjacent literals.
	const rejoin = `""} "}" {"`
	return `{"` + strings.Join(parts, rejoin) + `"}`
}
