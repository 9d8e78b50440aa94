package rules

import (
	"fmt"
	"regexp"
	"strings"
)

var nonSlugChar = regexp.MustCompile(`[^a-z0-9]+`)

// IdentityAssigner produces deterministic rule_id values per spec.md §3
// Identity & Ownership: normalize description.lower() (replace
// non-[a-z0-9] runs with a single underscore, trim), then disambiguate
// collisions with a monotonically increasing suffix _2, _3, ... across
// the whole run. A fresh assigner must be used per run — identity is
// stable for a given ordered input, not across runs with different
// inputs (spec.md P1).
type IdentityAssigner struct {
	seen map[string]int // base slug -> next suffix to try
}

// NewIdentityAssigner creates an empty assigner.
func NewIdentityAssigner() *IdentityAssigner {
	return &IdentityAssigner{seen: make(map[string]int)}
}

// Assign returns the next rule_id for description, in the same order
// Assign is called (spec.md: "Rule IDs are assigned in this order and
// are stable").
func (a *IdentityAssigner) Assign(description string) string {
	base := slugify(description)
	if base == "" {
		base = "rule"
	}

	n, exists := a.seen[base]
	if !exists {
		a.seen[base] = 2
		return base
	}
	a.seen[base] = n + 1
	return fmt.Sprintf("%s_%d", base, n)
}

// slugify implements the normalization spec.md §3 names: lowercase,
// replace non-[a-z0-9] by _, collapse runs, trim leading/trailing _.
func slugify(s string) string {
	lower := strings.ToLower(s)
	replaced := nonSlugChar.ReplaceAllString(lower, "_")
	return strings.Trim(replaced, "_")
}
