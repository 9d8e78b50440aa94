package model

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical renders t (assumed already minified) as a deterministic
// string suitable as an FSM cache key component (spec.md §6: "Cache key
// stability requires a canonical serialization of the match tree —
// sorted keys, deterministic node order after minification"). The
// format is not meant to be parsed back; it only needs to be stable and
// injective enough that two semantically distinct minified trees never
// collide.
func Canonical(t *Tree) string {
	var b strings.Builder
	writeCanonical(&b, t)
	return b.String()
}

func writeCanonical(b *strings.Builder, t *Tree) {
	if t == nil {
		b.WriteString("()")
		return
	}
	switch t.Kind {
	case KindNot:
		b.WriteString("not(")
		writeCanonical(b, t.Child)
		b.WriteString(")")
	case KindCondition:
		fmt.Fprintf(b, "%s(", t.Op)
		for i, c := range t.Children {
			if i > 0 {
				b.WriteString(",")
			}
			writeCanonical(b, c)
		}
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "leaf(%s,%s,%s)", t.Source, t.Function, canonicalInput(t.Input))
	}
}

func canonicalInput(in Input) string {
	fields := map[string]string{
		"value":       in.Value,
		"parameter":   in.Parameter,
		"ignore_case": fmt.Sprintf("%t", in.IgnoreCase),
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, "%s=%q", k, fields[k])
	}
	return b.String()
}
