// Package model defines the documentation model produced by luadoc.
package model

import "strings"

// Visibility of a class field.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Private   Visibility = "private"
)

// ParseVisibility reports whether s is one of the three visibility keywords.
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case Public, Protected, Private:
		return Visibility(s), true
	}
	return "", false
}

// Rank orders visibilities from most (0) to least visible.
func (v Visibility) Rank() int {
	switch v {
	case Protected:
		return 1
	case Private:
		return 2
	}
	return 0
}

// RefKind is the inferred target kind of a @see reference.
type RefKind string

const (
	RefClass          RefKind = "class"
	RefGlobalFunction RefKind = "global_function"
	RefMethod         RefKind = "method"
)

// SeeReference is a @see entry.
type SeeReference struct {
	Name        string  `json:"name" yaml:"name" msgpack:"name"`
	Kind        RefKind `json:"kind" yaml:"kind" msgpack:"kind"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description"`
}

// Field is a documented member of a class.
type Field struct {
	Name        string     `json:"name" yaml:"name" msgpack:"name"`
	Type        string     `json:"type" yaml:"type" msgpack:"type"`
	Visibility  Visibility `json:"visibility" yaml:"visibility" msgpack:"visibility"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description"`
}

// Parameter is a documented function parameter.
type Parameter struct {
	Name        string `json:"name" yaml:"name" msgpack:"name"`
	Type        string `json:"type" yaml:"type" msgpack:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description"`
}

// Function is a documented function or method.
//
// Namespace is the table path the definition was written against
// ("Config" for function Config:load()), empty for plain globals. It is
// kept even after the function is attached to its class.
type Function struct {
	Name              string         `json:"name" yaml:"name" msgpack:"name"`
	Namespace         string         `json:"namespace,omitempty" yaml:"namespace,omitempty" msgpack:"namespace"`
	Description       string         `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description"`
	Parameters        []Parameter    `json:"parameters,omitempty" yaml:"parameters,omitempty" msgpack:"parameters"`
	ReturnType        string         `json:"return_type,omitempty" yaml:"return_type,omitempty" msgpack:"return_type"`
	ReturnDescription string         `json:"return_description,omitempty" yaml:"return_description,omitempty" msgpack:"return_description"`
	NoDiscard         bool           `json:"nodiscard,omitempty" yaml:"nodiscard,omitempty" msgpack:"nodiscard"`
	Static            bool           `json:"static,omitempty" yaml:"static,omitempty" msgpack:"static"`
	Local             bool           `json:"-" yaml:"-" msgpack:"local"`
	Examples          []string       `json:"examples,omitempty" yaml:"examples,omitempty" msgpack:"examples"`
	See               []SeeReference `json:"see,omitempty" yaml:"see,omitempty" msgpack:"see"`
}

// Separator returns "." for static functions and ":" for instance methods.
func (f *Function) Separator() string {
	if f.Static {
		return "."
	}
	return ":"
}

// QualifiedName returns the name as written in source, e.g. "Config:load".
func (f *Function) QualifiedName() string {
	if f.Namespace == "" {
		return f.Name
	}
	return f.Namespace + f.Separator() + f.Name
}

// Signature returns "name(p: T, q: U)" with the return type appended as
// " -> R" when present.
func (f *Function) Signature() string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, p := range f.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Type)
	}
	b.WriteByte(')')
	if f.ReturnType != "" {
		b.WriteString(" -> ")
		b.WriteString(f.ReturnType)
	}
	return b.String()
}

// Variable is a documented free-standing variable.
type Variable struct {
	Name        string `json:"name" yaml:"name" msgpack:"name"`
	Type        string `json:"type" yaml:"type" msgpack:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description"`
	Local       bool   `json:"local,omitempty" yaml:"local,omitempty" msgpack:"local"`
}

// Class is a documented @class with its members.
type Class struct {
	Name        string         `json:"name" yaml:"name" msgpack:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description"`
	Parents     []string       `json:"parents,omitempty" yaml:"parents,omitempty" msgpack:"parents"`
	Fields      []Field        `json:"fields,omitempty" yaml:"fields,omitempty" msgpack:"fields"`
	Functions   []Function     `json:"functions,omitempty" yaml:"functions,omitempty" msgpack:"functions"`
	See         []SeeReference `json:"see,omitempty" yaml:"see,omitempty" msgpack:"see"`
}

// Field returns the field with the given name, or nil.
func (c *Class) Field(name string) *Field {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// Function returns the method with the given name, or nil.
func (c *Class) Function(name string) *Function {
	for i := range c.Functions {
		if c.Functions[i].Name == name {
			return &c.Functions[i]
		}
	}
	return nil
}

// AddField appends f unless a field with the same name exists.
// It reports whether f was added.
func (c *Class) AddField(f Field) bool {
	if c.Field(f.Name) != nil {
		return false
	}
	c.Fields = append(c.Fields, f)
	return true
}

// AddFunction appends fn unless a method with the same name exists.
// It reports whether fn was added.
func (c *Class) AddFunction(fn Function) bool {
	if c.Function(fn.Name) != nil {
		return false
	}
	c.Functions = append(c.Functions, fn)
	return true
}

// AddParent appends name unless it is already listed.
func (c *Class) AddParent(name string) {
	for _, p := range c.Parents {
		if p == name {
			return
		}
	}
	c.Parents = append(c.Parents, name)
}

// AddSee appends ref unless a reference to the same name exists.
func (c *Class) AddSee(ref SeeReference) {
	for _, r := range c.See {
		if r.Name == ref.Name {
			return
		}
	}
	c.See = append(c.See, ref)
}

// Absorb folds other into c. Members already present by name are kept;
// the first non-empty description wins.
func (c *Class) Absorb(other *Class) {
	if c.Description == "" {
		c.Description = other.Description
	}
	for _, f := range other.Fields {
		c.AddField(f)
	}
	for _, fn := range other.Functions {
		c.AddFunction(fn)
	}
	for _, p := range other.Parents {
		c.AddParent(p)
	}
	for _, r := range other.See {
		c.AddSee(r)
	}
}

// Documentation is the root aggregate: classes, free functions and free
// variables in discovery order.
type Documentation struct {
	Classes   []*Class   `json:"classes" yaml:"classes" msgpack:"classes"`
	Functions []Function `json:"functions" yaml:"functions" msgpack:"functions"`
	Variables []Variable `json:"variables" yaml:"variables" msgpack:"variables"`
}

// New returns an empty Documentation.
func New() *Documentation {
	return &Documentation{}
}

// Class returns the class with exactly the given name, or nil.
func (d *Documentation) Class(name string) *Class {
	for _, c := range d.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddClass registers c. If a class with the same name already exists, c is
// absorbed into it and the existing class is returned.
func (d *Documentation) AddClass(c *Class) *Class {
	if existing := d.Class(c.Name); existing != nil {
		existing.Absorb(c)
		return existing
	}
	d.Classes = append(d.Classes, c)
	return c
}

// AddFunction appends a free function.
func (d *Documentation) AddFunction(fn Function) {
	d.Functions = append(d.Functions, fn)
}

// AddVariable appends a free variable.
func (d *Documentation) AddVariable(v Variable) {
	d.Variables = append(d.Variables, v)
}

// Function returns the first free function with the given name, or nil.
func (d *Documentation) Function(name string) *Function {
	for i := range d.Functions {
		if d.Functions[i].Name == name {
			return &d.Functions[i]
		}
	}
	return nil
}

// Empty reports whether nothing was documented.
func (d *Documentation) Empty() bool {
	return len(d.Classes) == 0 && len(d.Functions) == 0 && len(d.Variables) == 0
}

// Namespace returns the part of a dotted name before its last dot, or "".
func Namespace(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}
