// Package schema wraps github.com/xeipuuv/gojsonschema — the external
// Draft-4 validator spec.md §4.3 delegates structural validation to —
// with the bundled v1 document schema and the format checker registry
// from internal/schema/formats.
package schema

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/svt/orm/internal/diag"
	"github.com/svt/orm/internal/schema/formats"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/v1.schema.json
var v1SchemaJSON []byte

func init() {
	for name, checker := range formats.All() {
		gojsonschema.FormatCheckers.Add(name, formatCheckerAdapter{checker})
	}
}

// formatCheckerAdapter adapts formats.Checker to gojsonschema's
// FormatChecker interface, which gojsonschema only invokes with the
// instance value already asserted to be a string.
type formatCheckerAdapter struct {
	checker formats.Checker
}

func (a formatCheckerAdapter) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true // non-strings are not this format checker's concern
	}
	return a.checker.Accepts(s)
}

// Validator validates decoded YAML documents against the bundled v1
// schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// New compiles the bundled schema once; reused across every document in
// a run.
func New() (*Validator, error) {
	loader := gojsonschema.NewBytesLoader(v1SchemaJSON)
	compiled, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("schema: failed to compile bundled v1 schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks one decoded YAML document (as a generic map, the
// shape gojsonschema requires) against the schema. Per spec.md §4.3,
// on failure it returns a best-match diagnostic first, followed by
// every other schema error — never just the first — and never
// short-circuits.
func (v *Validator) Validate(doc any, sourceFile string) []diag.Diagnostic {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []diag.Diagnostic{{
			Kind:     diag.KindSchema,
			Severity: diag.SeverityFatal,
			Message:  fmt.Sprintf("schema validation internal error: %v", err),
			Location: diag.Location{File: sourceFile},
		}}
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	ordered := bestMatchOrder(errs)

	out := make([]diag.Diagnostic, 0, len(ordered))
	for _, e := range ordered {
		out = append(out, diag.Diagnostic{
			Kind:     diag.KindSchema,
			Severity: diag.SeverityFatal,
			Message:  e.Description(),
			Location: diag.Location{File: sourceFile, Field: e.Field()},
		})
	}
	return out
}

// bestMatchOrder reorders errs so the "best match" (the deepest /
// most-specific field path, on the theory that a deeper failure
// pinpoints the actual mistake better than a shallow "didn't match any
// alternative" error) is first, preserving gojsonschema's own relative
// order otherwise — spec.md §4.3: "emits a best-match diagnostic ...
// followed by all other schema errors".
func bestMatchOrder(errs []gojsonschema.ResultError) []gojsonschema.ResultError {
	if len(errs) <= 1 {
		return errs
	}
	out := make([]gojsonschema.ResultError, len(errs))
	copy(out, errs)
	sort.SliceStable(out, func(i, j int) bool {
		return fieldDepth(out[i].Field()) > fieldDepth(out[j].Field())
	})
	return out
}

func fieldDepth(field string) int {
	depth := 0
	for _, c := range field {
		if c == '.' {
			depth++
		}
	}
	return depth
}

// DecodeYAMLToGeneric decodes a single YAML document into the
// map[string]any / []any generic shape gojsonschema.NewGoLoader expects
// — yaml.v3 decodes maps as map[string]interface{} by default when the
// target is interface{}, which is what gojsonschema needs.
func DecodeYAMLToGeneric(data []byte) (any, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}
