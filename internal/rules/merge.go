package rules

import "sort"

// Merged is the pipeline-wide result of spec.md §4.2's "Merge" and
// "Apply defaults" operations: per-domain rule lists and a flat test
// list, both in deterministic input order.
type Merged struct {
	ByDomain map[string][]*Rule
	Tests    []Test
}

// Merge concatenates the per-domain rule lists of docs (already in
// file-list order, since docs is built by iterating ListRuleFiles's
// sorted output) and assigns each rule its rule_id from one assigner
// shared across the whole run (spec.md §3 Identity, §4.2 Merge,
// §5 ordering guarantees).
//
// Document.ByDomain is a map and does not record the order domains were
// declared in; domainOrder supplies a fixed order (see DomainOrder) so
// rule_id assignment is reproducible run-to-run for identical input
// (P1), not an accident of map iteration.
func Merge(docs []*Document, domainOrder []string) *Merged {
	assigner := NewIdentityAssigner()
	m := &Merged{ByDomain: make(map[string][]*Rule)}

	for _, domain := range domainOrder {
		for _, doc := range docs {
			for _, rr := range doc.ByDomain[domain] {
				rule := &Rule{
					RuleID:        assigner.Assign(rr.Description),
					Description:   rr.Description,
					SourceFile:    doc.SourceFile,
					Domains:       rr.Domains,
					Matches:       rr.Matches,
					DomainDefault: rr.DomainDefault,
					Actions:       rr.Actions,
				}
				m.ByDomain[domain] = append(m.ByDomain[domain], rule)
			}
		}
	}

	for _, doc := range docs {
		m.Tests = append(m.Tests, doc.Tests...)
	}

	return m
}

// DomainOrder computes the first-seen domain order across docs, in
// document order; domains first seen in the same document are taken in
// sorted order. This is the order Merge iterates domains in, so rule_id
// assignment only ever depends on input, never on Go's unspecified map
// iteration order.
func DomainOrder(docs []*Document) []string {
	seen := make(map[string]bool)
	var order []string
	for _, doc := range docs {
		domains := make([]string, 0, len(doc.ByDomain))
		for domain := range doc.ByDomain {
			domains = append(domains, domain)
		}
		sort.Strings(domains)
		for _, domain := range domains {
			if !seen[domain] {
				seen[domain] = true
				order = append(order, domain)
			}
		}
	}
	return order
}

// ApplyDefaults implements spec.md §4.2 rule 3: if globals supplies
// defaults.https_redirection: true and a rule has no redirect action,
// set actions.https_redirection to the rule's existing value or true.
// An explicit false is never overridden (P3).
func ApplyDefaults(m *Merged, httpsRedirectionDefault bool) {
	if !httpsRedirectionDefault {
		return
	}
	for _, list := range m.ByDomain {
		for _, rule := range list {
			if rule.Actions.Redirect != nil {
				continue
			}
			if rule.Actions.HTTPSRedirection == nil {
				v := true
				rule.Actions.HTTPSRedirection = &v
			}
			// An explicit false is left untouched by construction: we
			// only ever fill in a nil pointer above.
		}
	}
}
