// Package diag carries non-fatal findings out of the documentation core.
//
// The core never prints. Callers that care pass a Reporter; a nil Reporter
// discards everything.
package diag

import "fmt"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	}
	return "unknown"
}

// Code names the kind of finding.
type Code string

const (
	UnknownTag          Code = "unknown-tag"
	MalformedTag        Code = "malformed-tag"
	TrailingBlock       Code = "trailing-block"
	DroppedLocal        Code = "dropped-local"
	DroppedNested       Code = "dropped-nested-assignment"
	UnresolvedField     Code = "unresolved-field"
	UnattachedMethod    Code = "unattached-method"
	UnresolvedSee       Code = "unresolved-see"
	UnknownParent       Code = "unknown-parent"
	IgnoredFields       Code = "ignored-fields"
	ClassMerged         Code = "class-merged"
	Undocumented        Code = "undocumented"
	ReadFailed          Code = "read-failed"
	CrossFileAttributed Code = "cross-file-attribution"
)

// Diagnostic is a single finding. Line is 1-based; 0 means the finding is
// not tied to a line.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Label    string
	Line     int
	Message  string
}

func (d Diagnostic) String() string {
	loc := d.Label
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", d.Label, d.Line)
	}
	if loc == "" {
		return fmt.Sprintf("%s [%s]", d.Message, d.Code)
	}
	return fmt.Sprintf("%s: %s [%s]", loc, d.Message, d.Code)
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Emit sends d to r if r is non-nil.
func Emit(r Reporter, d Diagnostic) {
	if r != nil {
		r.Report(d)
	}
}

// Warnf reports a warning.
func Warnf(r Reporter, code Code, label string, line int, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{Severity: SevWarning, Code: code, Label: label, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Infof reports an informational diagnostic.
func Infof(r Reporter, code Code, label string, line int, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{Severity: SevInfo, Code: code, Label: label, Line: line, Message: fmt.Sprintf(format, args...)})
}

// WithLabel returns a Reporter that fills in Label on diagnostics lacking one.
func WithLabel(r Reporter, label string) Reporter {
	if r == nil {
		return nil
	}
	return ReporterFunc(func(d Diagnostic) {
		if d.Label == "" {
			d.Label = label
		}
		r.Report(d)
	})
}

// Bag collects diagnostics in arrival order.
type Bag struct {
	items []Diagnostic
}

// Report implements Reporter.
func (b *Bag) Report(d Diagnostic) {
	b.items = append(b.items, d)
}

// Items returns the collected diagnostics. The slice must not be modified.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Codes returns the code of every collected diagnostic, in order.
func (b *Bag) Codes() []Code {
	codes := make([]Code, len(b.items))
	for i, d := range b.items {
		codes[i] = d.Code
	}
	return codes
}

// Has reports whether any diagnostic with code was collected.
func (b *Bag) Has(code Code) bool {
	for _, d := range b.items {
		if d.Code == code {
			return true
		}
	}
	return false
}
