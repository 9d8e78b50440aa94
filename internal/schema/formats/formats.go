// Package formats implements the eleven format checkers spec.md §4.3
// names — the part of schema validation this core owns. The generic
// Draft-4 structural engine is delegated to
// github.com/xeipuuv/gojsonschema, whose FormatChecker interface is
// exactly the "pluggable format checkers" contract spec.md asks for;
// this package only supplies the per-format Accepts predicates and a
// thin gojsonschema.FormatChecker adapter around each.
package formats

// Checker is the format-checker contract this package specifies; the
// schema package's init adapts each Checker to
// gojsonschema.FormatChecker through its formatCheckerAdapter.
type Checker interface {
	// Accepts reports whether value satisfies the format. value is
	// always a string — non-string instances are not this package's
	// concern (gojsonschema only invokes format checkers on strings).
	Accepts(value string) bool
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(value string) bool

func (f CheckerFunc) Accepts(value string) bool { return f(value) }

// All returns the name -> Checker registry for every format spec.md
// §4.3 defines, as a map (no iteration order).
func All() map[string]Checker {
	return map[string]Checker{
		"http-header-field-name":  CheckerFunc(HTTPHeaderFieldName),
		"http-header-field-value": CheckerFunc(HTTPHeaderFieldValue),
		"uri":                     CheckerFunc(URI),
		"uri-path":                CheckerFunc(URIPath),
		"uri-query":               CheckerFunc(URIQuery),
		"network":                 CheckerFunc(Network),
		"hostname_with_port":      CheckerFunc(HostnameWithPort),
		"origin":                  CheckerFunc(Origin),
		"unix_user_or_group":      CheckerFunc(UnixUserOrGroup),
		"orm_regex":               CheckerFunc(ORMRegex),
		"orm_regsub":              CheckerFunc(ORMRegsub),
	}
}
