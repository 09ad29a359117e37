package block

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	globalAssignRe = regexp.MustCompile(`^([\w.]+)\s*=(?:[^=]|$)`)
	localAssignRe  = regexp.MustCompile(`^local\s+([\w.]+)[^=]*=`)
	funcDefRe      = regexp.MustCompile(`^(local\s+)?function\s+([\w.:]+)\s*\(`)
	funcAssignRe   = regexp.MustCompile(`^(local\s+)?([\w.]+)\s*=\s*function\s*\(`)
	qualifiedRe    = regexp.MustCompile(`^\w+(?:\.\w+)*(?::\w+)?$`)
	funcKeywordRe  = regexp.MustCompile(`^(?:local\s+)?function\b`)
)

// AnchorError reports a documentation block that expects a function but is
// followed by a line that does not define one.
type AnchorError struct {
	Line int
	Text string
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("expected function declaration after documentation at line %d, got %q", e.Line, e.Text)
}

// Assignment is the target of a variable anchor line.
type Assignment struct {
	Name  string
	Local bool
}

// Definition is the target of a function anchor line.
type Definition struct {
	Name      string
	Namespace string
	Static    bool
	Local     bool
}

// IsVariableDeclaration reports whether line assigns a plain value to a
// local or a possibly dotted global name. Only a function literal that is
// the assigned value itself disqualifies the line; one nested inside a
// table or call argument does not.
func IsVariableDeclaration(line string) bool {
	t := strings.TrimSpace(line)
	if funcAssignRe.MatchString(t) {
		return false
	}
	if funcKeywordRe.MatchString(t) {
		return false
	}
	if strings.HasPrefix(t, "local ") {
		return strings.Contains(t, "=")
	}
	return globalAssignRe.MatchString(t)
}

// ParseAssignment extracts the assigned name from line. The zero value is
// returned when line is not an assignment.
func ParseAssignment(line string) Assignment {
	t := strings.TrimSpace(line)
	if m := localAssignRe.FindStringSubmatch(t); m != nil {
		return Assignment{Name: m[1], Local: true}
	}
	if m := globalAssignRe.FindStringSubmatch(t); m != nil {
		return Assignment{Name: m[1]}
	}
	return Assignment{}
}

// ParseDefinition parses a function anchor line. Accepted shapes are
//
//	function Name:method(      instance method
//	function Name.fn(          static function, namespace may be dotted
//	function fn(               standalone
//	A.B.fn = function(         function literal assigned to a dotted name
//
// each optionally preceded by "local".
func ParseDefinition(line string) (Definition, bool) {
	t := strings.TrimSpace(line)
	if m := funcDefRe.FindStringSubmatch(t); m != nil {
		if !qualifiedRe.MatchString(m[2]) {
			return Definition{}, false
		}
		d := splitQualified(m[2])
		d.Local = m[1] != ""
		return d, true
	}
	if m := funcAssignRe.FindStringSubmatch(t); m != nil {
		d := splitQualified(m[2])
		d.Local = m[1] != ""
		return d, true
	}
	return Definition{}, false
}

func splitQualified(name string) Definition {
	if ns, method, ok := strings.Cut(name, ":"); ok {
		return Definition{Name: method, Namespace: ns}
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return Definition{Name: name[i+1:], Namespace: name[:i], Static: true}
	}
	return Definition{Name: name}
}
