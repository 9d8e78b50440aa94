// Package model implements the canonical match tree — the in-memory
// boolean IR shared by the rule parser, the collision engine, and both
// config emitters.
package model

import "fmt"

// Op is the boolean operator carried by a Condition node.
type Op string

const (
	OpAll Op = "all" // conjunction
	OpAny Op = "any" // disjunction
)

// Source identifies which part of an incoming request a Match leaf
// inspects.
type Source string

const (
	SourcePath   Source = "path"
	SourceDomain Source = "domain"
	SourceQuery  Source = "query"
	SourceMethod Source = "method"
)

// Function is a match predicate function. Which functions are legal
// depends on Source; see FunctionsFor.
type Function string

const (
	FuncExact      Function = "exact"
	FuncRegex      Function = "regex"
	FuncBeginsWith Function = "begins_with"
	FuncEndsWith   Function = "ends_with"
	FuncContains   Function = "contains"
	FuncExist      Function = "exist"
)

// FunctionsFor returns the legal functions for a source, in the order
// they are documented in spec.md §3.
func FunctionsFor(src Source) []Function {
	switch src {
	case SourcePath:
		return []Function{FuncExact, FuncRegex, FuncBeginsWith, FuncEndsWith, FuncContains}
	case SourceQuery:
		return []Function{FuncExist, FuncExact, FuncRegex, FuncBeginsWith, FuncEndsWith, FuncContains}
	case SourceDomain:
		return []Function{FuncExact}
	case SourceMethod:
		return []Function{FuncExact, FuncRegex}
	default:
		return nil
	}
}

// supports reports whether fn is legal for src.
func supports(src Source, fn Function) bool {
	for _, f := range FunctionsFor(src) {
		if f == fn {
			return true
		}
	}
	return false
}

// Input is the function-dependent payload of a Match leaf. Which fields
// are populated depends on Source and Function (spec.md §3):
//
//	path:   Value, IgnoreCase
//	query:  Parameter, Value (absent for exist), IgnoreCase
//	domain: Value only
//	method: Value, IgnoreCase
type Input struct {
	Value      string
	Parameter  string
	IgnoreCase bool
}

// Tree is the recursive tagged sum described in spec.md §3. Exactly one
// of the three shapes is populated, selected by Kind.
type Tree struct {
	Kind Kind

	// Condition (Kind == KindCondition)
	Op       Op
	Children []*Tree

	// Negation (Kind == KindNot)
	Child *Tree

	// Leaf (Kind == KindMatch)
	Source   Source
	Function Function
	Input    Input
}

// Kind tags which of Tree's three shapes is populated.
type Kind int

const (
	KindMatch Kind = iota
	KindCondition
	KindNot
)

// Match constructs a leaf node. It panics if fn is not legal for src —
// callers (the rule parser) are expected to have validated this already
// via supports/FunctionsFor; a panic here catches a parser bug rather
// than silently emitting an unrepresentable leaf.
func Match(src Source, fn Function, in Input) *Tree {
	if !supports(src, fn) {
		panic(fmt.Sprintf("model: function %q is not valid for source %q", fn, src))
	}
	return &Tree{Kind: KindMatch, Source: src, Function: fn, Input: in}
}

// Condition constructs an all/any node over children. len(children) == 0
// is permitted and minify leaves such a node as it is; constructing
// with a single child is permitted too — minify removes the degenerate
// wrapper (spec.md I5).
func Condition(op Op, children ...*Tree) *Tree {
	return &Tree{Kind: KindCondition, Op: op, Children: children}
}

// Not constructs a negation node.
func Not(child *Tree) *Tree {
	return &Tree{Kind: KindNot, Child: child}
}

// All is shorthand for Condition(OpAll, children...).
func All(children ...*Tree) *Tree { return Condition(OpAll, children...) }

// Any is shorthand for Condition(OpAny, children...).
func Any(children ...*Tree) *Tree { return Condition(OpAny, children...) }
