// Package attrib decides which class a field belongs to when the
// documentation does not say so directly.
//
// These are heuristics over the raw anchor text of a block. They are kept
// here, behind plain functions, so the rest of the pipeline does not
// depend on their details.
package attrib

import (
	"regexp"
	"strings"

	"github.com/phobologic/luadoc/internal/model"
)

var (
	assignmentLineRe = regexp.MustCompile(`^[\w.]+\s*=`)
	memberAssignRe   = regexp.MustCompile(`([\w.]+)\.\w+\s*=`)
)

// Lookup reports whether a class with the given name is known.
type Lookup func(name string) bool

// DocLookup returns a Lookup over the classes of docs, checked in order.
func DocLookup(docs ...*model.Documentation) Lookup {
	return func(name string) bool {
		for _, d := range docs {
			if d != nil && d.Class(name) != nil {
				return true
			}
		}
		return false
	}
}

// Assignment attributes one field to a class.
type Assignment struct {
	Class string
	Field model.Field
}

// BlockTarget finds the class targeted by an anchor such as
// "Config.General.name = ...": the dotted prefix before the final member
// must name a known class.
func BlockTarget(anchor string, known Lookup) (string, bool) {
	t := strings.TrimSpace(anchor)
	if !assignmentLineRe.MatchString(t) {
		return "", false
	}
	m := memberAssignRe.FindStringSubmatch(t)
	if m == nil || !known(m[1]) {
		return "", false
	}
	return m[1], true
}

// FieldTarget finds the class for a single field by looking for an
// assignment whose dotted path ends exactly at the field name.
func FieldTarget(anchor, field string, known Lookup) (string, bool) {
	t := strings.TrimSpace(anchor)
	if field == "" || !strings.Contains(t, field) || !strings.Contains(t, "=") {
		return "", false
	}
	re, err := regexp.Compile(`([\w.]+)\.` + regexp.QuoteMeta(field) + `\s*=`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(t)
	if m == nil || !known(m[1]) {
		return "", false
	}
	return m[1], true
}

// Resolve attributes the fields of an orphan field block. A whole-block
// match wins; otherwise each field is tried on its own. Fields neither
// heuristic can place are returned as unresolved.
func Resolve(anchor string, fields []model.Field, known Lookup) (resolved []Assignment, unresolved []model.Field) {
	if class, ok := BlockTarget(anchor, known); ok {
		for _, f := range fields {
			resolved = append(resolved, Assignment{Class: class, Field: f})
		}
		return resolved, nil
	}
	for _, f := range fields {
		if class, ok := FieldTarget(anchor, f.Name, known); ok {
			resolved = append(resolved, Assignment{Class: class, Field: f})
			continue
		}
		unresolved = append(unresolved, f)
	}
	return resolved, unresolved
}

// Member splits a dotted variable name at its first dot. nested is true
// when the member part itself contains a dot (Config.General.framework),
// which marks a value assignment into an existing structure rather than a
// field definition.
func Member(name string) (prefix, member string, nested bool) {
	prefix, member, ok := strings.Cut(name, ".")
	if !ok {
		return "", "", false
	}
	return prefix, member, strings.Contains(member, ".")
}
