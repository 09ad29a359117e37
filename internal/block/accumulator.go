package block

import (
	"strings"

	"github.com/phobologic/luadoc/internal/annotation"
	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/model"
)

// State is the accumulator state.
type State int

const (
	Idle State = iota
	Accumulating
)

func (s State) String() string {
	if s == Accumulating {
		return "accumulating"
	}
	return "idle"
}

// pending is the block under construction. Its flags only matter until the
// anchor line arrives; after that the block is resolved into one of the
// Block variants and pending is discarded.
//
// expectFunc is set by prose or function tags seen before any class or
// field tag. strictFunc marks that a function tag set it, in which case a
// plain assignment anchor is an error instead of a variable.
type pending struct {
	startLine int

	expectFunc      bool
	strictFunc      bool
	hasClassOrField bool
	hasTypeTag      bool
	inExample       bool

	description string
	examples    []string
	see         []model.SeeReference

	class  *annotation.ClassTag
	fields []model.Field

	params     []model.Parameter
	returnType string
	returnDesc string
	nodiscard  bool

	varType string
	varDesc string
}

// Accumulator is the line-driven state machine. Feed it every line of a
// file in order, then call Finish.
type Accumulator struct {
	label    string
	reporter diag.Reporter
	cur      *pending
	blocks   []Block
}

// NewAccumulator returns an idle accumulator. label and r are used only for
// diagnostics; r may be nil.
func NewAccumulator(label string, r diag.Reporter) *Accumulator {
	return &Accumulator{label: label, reporter: r}
}

// State reports whether a block is currently open.
func (a *Accumulator) State() State {
	if a.cur != nil {
		return Accumulating
	}
	return Idle
}

// Feed processes one line. lineNo is 1-based. The only error is
// *AnchorError.
func (a *Accumulator) Feed(lineNo int, line string) error {
	if annotation.IsDocLine(line) {
		if a.cur == nil {
			a.cur = &pending{startLine: lineNo}
		}
		a.docLine(lineNo, line)
		return nil
	}
	if a.cur == nil {
		return nil
	}
	p := a.cur
	a.cur = nil
	b, err := a.close(p, Anchor{Line: lineNo, Text: line})
	if err != nil {
		return err
	}
	a.blocks = append(a.blocks, b)
	return nil
}

// Finish returns the closed blocks in source order. An open block without
// an anchor line is dropped.
func (a *Accumulator) Finish() []Block {
	if a.cur != nil {
		diag.Warnf(a.reporter, diag.TrailingBlock, a.label, a.cur.startLine,
			"documentation block at end of input has no code line and is ignored")
		a.cur = nil
	}
	blocks := a.blocks
	a.blocks = nil
	return blocks
}

// Scan runs content through a fresh accumulator.
func Scan(label, content string, r diag.Reporter) ([]Block, error) {
	acc := NewAccumulator(label, r)
	for i, line := range strings.Split(content, "\n") {
		if err := acc.Feed(i+1, strings.TrimSuffix(line, "\r")); err != nil {
			return nil, err
		}
	}
	return acc.Finish(), nil
}

func (a *Accumulator) docLine(lineNo int, line string) {
	p := a.cur
	l, known := annotation.Split(line)
	if !known {
		diag.Infof(a.reporter, diag.UnknownTag, a.label, lineNo, "tag @%s is not documented", l.Raw)
		return
	}

	switch l.Tag {
	case annotation.TagClass, annotation.TagField:
		p.hasClassOrField = true
	case annotation.TagParam, annotation.TagReturn, annotation.TagFunction, annotation.TagNoDiscard:
		if !p.hasClassOrField {
			p.expectFunc = true
			p.strictFunc = true
		}
	case annotation.TagNone:
		if !p.hasClassOrField {
			p.expectFunc = true
		}
	}

	switch l.Tag {
	case annotation.TagNone:
		p.prose(l.Payload)
	case annotation.TagClass:
		ct, err := annotation.ParseClass(l.Payload)
		if err != nil {
			diag.Warnf(a.reporter, diag.MalformedTag, a.label, lineNo, "@class: %v", err)
			return
		}
		p.class = &ct
		if ct.Description != "" {
			p.description = ct.Description
		}
	case annotation.TagField:
		f, err := annotation.ParseField(l.Payload)
		if err != nil {
			diag.Warnf(a.reporter, diag.MalformedTag, a.label, lineNo, "@field: %v", err)
			return
		}
		p.fields = append(p.fields, f)
	case annotation.TagParam:
		prm, err := annotation.ParseParam(l.Payload)
		if err != nil {
			diag.Warnf(a.reporter, diag.MalformedTag, a.label, lineNo, "@param: %v", err)
			return
		}
		p.params = append(p.params, prm)
	case annotation.TagReturn:
		p.returnType, p.returnDesc = annotation.ParseReturn(l.Payload)
	case annotation.TagType:
		p.varType, p.varDesc = annotation.ParseType(l.Payload)
		p.hasTypeTag = true
	case annotation.TagSee:
		ref, err := annotation.ParseSee(l.Payload)
		if err != nil {
			diag.Warnf(a.reporter, diag.MalformedTag, a.label, lineNo, "@see: %v", err)
			return
		}
		p.see = append(p.see, ref)
	case annotation.TagNoDiscard:
		p.nodiscard = true
	}
}

func (p *pending) prose(text string) {
	switch {
	case annotation.IsFence(text):
		p.inExample = !p.inExample
	case text == "":
	case p.inExample:
		p.examples = append(p.examples, text)
	case p.description == "":
		p.description = text
	default:
		p.description += " " + text
	}
}

// close binds p to its anchor line and resolves the block kind.
func (a *Accumulator) close(p *pending, anchor Anchor) (Block, error) {
	var (
		def    *Definition
		assign Assignment
		typed  = p.hasTypeTag
	)

	switch {
	case p.expectFunc && !p.strictFunc && IsVariableDeclaration(anchor.Text):
		assign = ParseAssignment(anchor.Text)
		typed = true
	case p.expectFunc:
		d, ok := ParseDefinition(anchor.Text)
		if !ok {
			return nil, &AnchorError{Line: anchor.Line, Text: anchor.Text}
		}
		def = &d
	case p.hasTypeTag, p.hasClassOrField:
		assign = ParseAssignment(anchor.Text)
	}

	common := Common{
		StartLine:   p.startLine,
		Anchor:      anchor,
		Description: p.description,
		Examples:    p.examples,
		See:         p.see,
	}
	fn := func() *FunctionBlock {
		return &FunctionBlock{
			Common:            common,
			Def:               *def,
			Params:            p.params,
			ReturnType:        p.returnType,
			ReturnDescription: p.returnDesc,
			NoDiscard:         p.nodiscard,
		}
	}
	variable := func() *VariableBlock {
		return &VariableBlock{Common: common, Assign: assign, Type: p.varType, TypeDescription: p.varDesc}
	}

	if p.class != nil {
		cb := &ClassBlock{Common: common, Class: *p.class, Fields: p.fields}
		if def != nil {
			cb.Method = fn()
		}
		if typed && assign.Name != "" && assign.Name != p.class.Name {
			cb.Var = variable()
		}
		return cb, nil
	}

	if len(p.fields) > 0 && (def != nil || p.hasTypeTag) {
		diag.Warnf(a.reporter, diag.IgnoredFields, a.label, anchor.Line,
			"@field tags without @class are only attributed from assignment anchors; %d field(s) ignored", len(p.fields))
	}

	switch {
	case def != nil:
		return fn(), nil
	case len(p.fields) > 0 && !p.hasTypeTag:
		return &FieldBlock{Common: common, Fields: p.fields}, nil
	case typed && assign.Name != "":
		return variable(), nil
	}
	return &Unclassified{Common: common}, nil
}
