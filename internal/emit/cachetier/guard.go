// Package cachetier is the cache-tier ("VCL-style") back-end of the
// Config Emitter (spec.md §4.5): it lowers a rule's match tree into a
// guard expression, its action list into ordered statement bins, and
// ties per-rule guards together into one domain-level dispatcher.
//
// It does not render text. Per spec.md §6/§7, template rendering is a
// separate, out-of-scope collaborator; this package's job stops at
// producing the ordered, already-escaped values a template consumes.
package cachetier

import (
	"fmt"

	"github.com/svt/orm/internal/model"
)

// ExprKind tags which shape of Expr is populated.
type ExprKind int

const (
	ExprLeaf ExprKind = iota
	ExprAnd
	ExprOr
	ExprNot
)

// Expr is the guard condition a rule's match tree lowers to — the
// cache tier's rendering of spec.md §4.1's boolean IR in terms a VCL
// template can walk directly (field/operator/pattern triples instead
// of src/fn/input tuples).
type Expr struct {
	Kind     ExprKind
	Children []*Expr // ExprAnd / ExprOr
	Child    *Expr   // ExprNot
	Leaf     *Leaf   // ExprLeaf
}

// Leaf is one concrete test against the request.
type Leaf struct {
	Field   string // e.g. "req.url", "req.http.Host", "req.method"
	Op      string // "~" (regex match) or "==" (exact)
	Pattern string // already-escaped
}

// LowerGuard projects t into an Expr using model.Fold, the same
// traversal the Collision Engine's Project uses, so both back-ends and
// the engine agree on not-pushdown semantics (spec.md §4.1).
func LowerGuard(t *model.Tree) (*Expr, error) {
	var buildErr error

	e := model.Fold[*Expr](t,
		func(src model.Source, fn model.Function, in model.Input, negate bool) *Expr {
			if buildErr != nil {
				return nil
			}
			leaf, err := lowerLeaf(src, fn, in)
			if err != nil {
				buildErr = err
				return nil
			}
			e := &Expr{Kind: ExprLeaf, Leaf: leaf}
			if negate {
				e = &Expr{Kind: ExprNot, Child: e}
			}
			return e
		},
		func(children []*Expr, op model.Op, negate bool) *Expr {
			if buildErr != nil {
				return nil
			}
			kind := ExprAnd
			if op == model.OpAny {
				kind = ExprOr
			}
			e := &Expr{Kind: kind, Children: children}
			if negate {
				e = &Expr{Kind: ExprNot, Child: e}
			}
			return e
		},
	)

	if buildErr != nil {
		return nil, buildErr
	}
	return e, nil
}

func lowerLeaf(src model.Source, fn model.Function, in model.Input) (*Leaf, error) {
	switch src {
	case model.SourceDomain:
		return &Leaf{Field: "req.http.Host", Op: "==", Pattern: quoteLongString(in.Value)}, nil
	case model.SourceMethod:
		return &Leaf{Field: "req.method", Op: "~", Pattern: pattern(fn, in)}, nil
	case model.SourcePath:
		return &Leaf{Field: "req.url", Op: "~", Pattern: pattern(fn, in)}, nil
	case model.SourceQuery:
		return &Leaf{Field: queryField, Op: "~", Pattern: queryPattern(fn, in)}, nil
	default:
		return nil, fmt.Errorf("cachetier: unknown match source %q", src)
	}
}

// queryField names the cached variable holding the request's raw,
// undecoded query string (everything after "?" in the request URL),
// against which every query leaf's pattern is matched — not a
// per-parameter accessor, since the boundary markers below need the
// whole query string to find "&"-delimited parameter boundaries.
const queryField = "req.http.x-orm-query"

// queryPattern builds the combined parameter-name-and-value regex for
// a query leaf, bounded the way make_vcl_query_regex does: a
// parameter starts at the beginning of the query string or just past
// an "&", and ends at "=", "&", or the end of string (spec.md §4.5:
// "builds patterns bounded by (^|&) / (=|&|$) and wildcards [^&]*").
func queryPattern(fn model.Function, in model.Input) string {
	const (
		begin    = `(^|&)`
		paramEnd = `(=|&|$)`
		end      = `(&|$)`
		wildcard = `[^&]*`
	)

	param := ev(in.Parameter)
	var body string
	switch fn {
	case model.FuncExist:
		body = begin + param + paramEnd
	case model.FuncRegex:
		body = begin + param + "=" + in.Value + end
	case model.FuncExact:
		body = begin + param + "=" + ev(in.Value) + end
	case model.FuncBeginsWith:
		body = begin + param + "=" + ev(in.Value) + wildcard + end
	case model.FuncEndsWith:
		body = begin + param + "=" + wildcard + ev(in.Value) + end
	case model.FuncContains:
		body = begin + param + "=" + wildcard + ev(in.Value) + wildcard + end
	}
	if in.IgnoreCase {
		body = "(?i)" + body
	}
	return quoteLongString(body)
}

// pattern builds the anchored-or-not regex literal for a leaf,
// escaping the literal parts with ev (spec.md §6, P7). ignore_case
// becomes a leading (?i) flag group, understood by VCL's PCRE-backed
// regex matcher the same way it is by internal/collision/automaton.
func pattern(fn model.Function, in model.Input) string {
	var body string
	switch fn {
	case model.FuncExact:
		body = "^" + ev(in.Value) + "$"
	case model.FuncBeginsWith:
		body = "^" + ev(in.Value)
	case model.FuncEndsWith:
		body = ev(in.Value) + "$"
	case model.FuncContains:
		body = ev(in.Value)
	case model.FuncRegex:
		body = in.Value
	}
	if in.IgnoreCase {
		body = "(?i)" + body
	}
	return quoteLongString(body)
}
