// Package diag implements the diagnostic/result model shared across the
// pipeline's phases, generalizing the teacher's configvalidator.Result/
// Error types (go-app/pkg/configvalidator/types.go) to the four error
// kinds and severity model of spec.md §7.
package diag

import "fmt"

// Kind is one of the four error kinds spec.md §7 defines.
type Kind string

const (
	KindInput      Kind = "input"      // YAML parse error, missing file, empty glob
	KindSchema     Kind = "schema"     // JSON-Schema validation failure
	KindConstraint Kind = "constraint" // collision, multiple domain_default, domain_default: false
	KindEmitter    Kind = "emitter"    // unknown action key, unknown origin scheme
)

// Severity mirrors the teacher's Error/Warning split. spec.md §7 only
// defines fatal diagnostics for this core; Severity still carries a
// Warning level for forward compatibility the way the teacher's Result
// carries Warnings/Info/Suggestions alongside Errors. No phase emits a
// warning at present; every diagnostic reported is fatal.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityWarning Severity = "warning"
)

// Location pinpoints a diagnostic's origin in the input.
type Location struct {
	File  string
	Line  int
	Field string // e.g. "matches.all[0].paths.exact[1]"
}

func (l Location) String() string {
	switch {
	case l.File != "" && l.Line > 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	case l.File != "" && l.Field != "":
		return fmt.Sprintf("%s (%s)", l.File, l.Field)
	case l.File != "":
		return l.File
	case l.Field != "":
		return l.Field
	default:
		return "unknown location"
	}
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Location Location
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s [%s]: %s (%s)", d.Severity, d.Kind, d.Message, d.Location)
}

// Report accumulates diagnostics across phases. The pipeline driver
// never short-circuits on the first diagnostic within a phase (spec.md
// §4.3: "the pipeline aborts after validating every file (no
// short-circuit)"; §4.4: "Report every colliding pair") — Report is the
// structure that makes that accumulation possible while still letting
// the driver decide, once a phase ends, whether to proceed.
type Report struct {
	Diagnostics []Diagnostic
}

// Add appends a diagnostic.
func (r *Report) Add(kind Kind, severity Severity, loc Location, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Kind:     kind,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Fatal appends a fatal diagnostic — shorthand for the common case.
func (r *Report) Fatal(kind Kind, loc Location, format string, args ...any) {
	r.Add(kind, SeverityFatal, loc, format, args...)
}

// HasFatal reports whether any accumulated diagnostic is fatal.
func (r *Report) HasFatal() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Merge appends other's diagnostics onto r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// ExitCode implements spec.md §7/§6: 0 on success, 1 if any fatal
// diagnostic was recorded.
func (r *Report) ExitCode() int {
	if r.HasFatal() {
		return 1
	}
	return 0
}
