// Package assemble turns the closed blocks of one file into documentation
// entities.
package assemble

import (
	"github.com/phobologic/luadoc/internal/attrib"
	"github.com/phobologic/luadoc/internal/block"
	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/model"
)

// Orphan is a set of @field tags whose class could not be found in the
// file that declared them. The merger retries them against classes from
// earlier files.
type Orphan struct {
	Anchor block.Anchor
	Fields []model.Field
}

// FileDoc is the documentation of a single file.
type FileDoc struct {
	Label   string
	Doc     *model.Documentation
	Orphans []Orphan
}

// File assembles blocks in four passes: classes, functions, typed
// variables, then orphan field blocks. Each pass resolves names against
// the classes registered by the passes before it.
func File(label string, blocks []block.Block, r diag.Reporter) *FileDoc {
	fd := &FileDoc{Label: label, Doc: model.New()}
	a := &assembler{fd: fd, r: r}

	for _, b := range blocks {
		if cb, ok := b.(*block.ClassBlock); ok {
			a.class(cb)
		}
	}
	for _, b := range blocks {
		switch b := b.(type) {
		case *block.FunctionBlock:
			a.function(b)
		case *block.ClassBlock:
			if b.Method != nil {
				a.function(b.Method)
			}
		}
	}
	for _, b := range blocks {
		switch b := b.(type) {
		case *block.VariableBlock:
			a.variable(b)
		case *block.ClassBlock:
			if b.Var != nil {
				a.variable(b.Var)
			}
		}
	}

	var orphans []*block.FieldBlock
	for _, b := range blocks {
		if fb, ok := b.(*block.FieldBlock); ok {
			orphans = append(orphans, fb)
		}
	}
	a.orphans(orphans)

	return fd
}

type assembler struct {
	fd *FileDoc
	r  diag.Reporter
}

func (a *assembler) doc() *model.Documentation { return a.fd.Doc }

func (a *assembler) class(b *block.ClassBlock) {
	c := b.ClassModel()
	if existing := a.doc().Class(c.Name); existing != nil {
		diag.Infof(a.r, diag.ClassMerged, a.fd.Label, b.Anchor.Line, "class %s declared again; members merged", c.Name)
	}
	a.doc().AddClass(c)
}

func (a *assembler) function(b *block.FunctionBlock) {
	fn := b.Function()
	if fn.Local {
		diag.Infof(a.r, diag.DroppedLocal, a.fd.Label, b.Anchor.Line, "local function %s is not documented", fn.QualifiedName())
		return
	}
	if fn.Namespace != "" {
		if c := a.doc().Class(fn.Namespace); c != nil {
			if !c.AddFunction(fn) {
				diag.Infof(a.r, diag.ClassMerged, a.fd.Label, b.Anchor.Line, "%s already documented; keeping first", fn.QualifiedName())
			}
			return
		}
	}
	a.doc().AddFunction(fn)
}

func (a *assembler) variable(b *block.VariableBlock) {
	v := b.Variable()
	if v.Local {
		diag.Infof(a.r, diag.DroppedLocal, a.fd.Label, b.Anchor.Line, "local variable %s is not documented", v.Name)
		return
	}
	if prefix, member, nested := attrib.Member(v.Name); prefix != "" {
		if nested {
			diag.Warnf(a.r, diag.DroppedNested, a.fd.Label, b.Anchor.Line,
				"%s assigns into a nested table and is not treated as a definition", v.Name)
			return
		}
		if c := a.doc().Class(prefix); c != nil {
			c.AddField(AsField(member, v))
			return
		}
	}
	a.doc().AddVariable(v)
}

func (a *assembler) orphans(blocks []*block.FieldBlock) {
	known := attrib.DocLookup(a.doc())
	for _, b := range blocks {
		resolved, unresolved := attrib.Resolve(b.Anchor.Text, b.Fields, known)
		for _, as := range resolved {
			a.doc().Class(as.Class).AddField(as.Field)
		}
		if len(unresolved) > 0 {
			a.fd.Orphans = append(a.fd.Orphans, Orphan{Anchor: b.Anchor, Fields: unresolved})
		}
	}
}

// AsField converts a one-dot variable into a public field named member.
func AsField(member string, v model.Variable) model.Field {
	return model.Field{Name: member, Type: v.Type, Visibility: model.Public, Description: v.Description}
}
