// Package merge combines per-file documentation into one Documentation.
//
// Files are merged in the order given. Classes are unified by name and
// their members by name, with the first occurrence kept. Free functions and
// variables are never de-duplicated: the same name in two files is two
// entries.
package merge

import (
	"slices"

	"github.com/phobologic/luadoc/internal/assemble"
	"github.com/phobologic/luadoc/internal/attrib"
	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/model"
)

// Merger owns the cumulative Documentation.
type Merger struct {
	doc *model.Documentation
	r   diag.Reporter
}

// New returns an empty Merger. r may be nil.
func New(r diag.Reporter) *Merger {
	return &Merger{doc: model.New(), r: r}
}

// Documentation returns the merged result.
func (m *Merger) Documentation() *model.Documentation {
	return m.doc
}

// Add merges one file into the cumulative Documentation.
//
// Entities the file could not attribute on its own get a second chance
// here: a namespaced free function, a one-dot variable or an orphan field
// block whose class was declared by an earlier file is attached to that
// class. Anything still unattributed keeps its single-file form, and
// orphan fields are dropped. The result therefore depends on file order:
// when the class is declared in a later file, the function stays free.
func (m *Merger) Add(fd *assemble.FileDoc) {
	for _, c := range fd.Doc.Classes {
		if existing := m.doc.Class(c.Name); existing != nil {
			existing.Absorb(c)
			continue
		}
		m.doc.Classes = append(m.doc.Classes, Clone(c))
	}

	for _, fn := range fd.Doc.Functions {
		if fn.Namespace != "" {
			if c := m.doc.Class(fn.Namespace); c != nil {
				diag.Infof(m.r, diag.CrossFileAttributed, fd.Label, 0, "%s attached to class %s", fn.QualifiedName(), c.Name)
				c.AddFunction(fn)
				continue
			}
		}
		m.doc.AddFunction(fn)
	}

	for _, v := range fd.Doc.Variables {
		if prefix, member, nested := attrib.Member(v.Name); prefix != "" && !nested {
			if c := m.doc.Class(prefix); c != nil {
				diag.Infof(m.r, diag.CrossFileAttributed, fd.Label, 0, "%s attached to class %s as field", v.Name, c.Name)
				c.AddField(assemble.AsField(member, v))
				continue
			}
		}
		m.doc.AddVariable(v)
	}

	known := attrib.DocLookup(m.doc)
	for _, o := range fd.Orphans {
		resolved, unresolved := attrib.Resolve(o.Anchor.Text, o.Fields, known)
		for _, as := range resolved {
			m.doc.Class(as.Class).AddField(as.Field)
		}
		for _, f := range unresolved {
			diag.Warnf(m.r, diag.UnresolvedField, fd.Label, o.Anchor.Line, "no class found for field %s", f.Name)
		}
	}
}

// All merges files in order.
func All(files []*assemble.FileDoc, r diag.Reporter) *model.Documentation {
	m := New(r)
	for _, fd := range files {
		m.Add(fd)
	}
	return m.Documentation()
}

// Clone returns a deep copy of c so later merges never write through to a
// per-file Documentation.
func Clone(c *model.Class) *model.Class {
	out := *c
	out.Parents = slices.Clone(c.Parents)
	out.Fields = slices.Clone(c.Fields)
	out.Functions = slices.Clone(c.Functions)
	out.See = slices.Clone(c.See)
	return &out
}
