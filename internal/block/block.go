// Package block groups documentation comment lines into blocks and binds
// each block to the code line that follows it.
//
// A block that is still open when the input ends has no anchor and is
// dropped; the Accumulator reports it as a trailing-block diagnostic.
package block

import (
	"slices"

	"github.com/phobologic/luadoc/internal/annotation"
	"github.com/phobologic/luadoc/internal/model"
)

// Block is a closed documentation block. It is one of *ClassBlock,
// *FunctionBlock, *VariableBlock, *FieldBlock or *Unclassified.
type Block interface {
	Info() *Common
}

// Anchor is the first non-comment line after a block.
type Anchor struct {
	Line int
	Text string
}

// Common holds what every block kind carries.
type Common struct {
	StartLine   int
	Anchor      Anchor
	Description string
	Examples    []string
	See         []model.SeeReference
}

func (c *Common) Info() *Common { return c }

// ClassBlock declares a class, optionally with co-located fields.
//
// When the anchor also documents a function or a typed assignment, Method
// or Var carries it. Most class blocks have neither.
type ClassBlock struct {
	Common
	Class  annotation.ClassTag
	Fields []model.Field
	Method *FunctionBlock
	Var    *VariableBlock
}

// FunctionBlock documents a function definition.
type FunctionBlock struct {
	Common
	Def               Definition
	Params            []model.Parameter
	ReturnType        string
	ReturnDescription string
	NoDiscard         bool
}

// VariableBlock documents a variable assignment.
type VariableBlock struct {
	Common
	Assign          Assignment
	Type            string
	TypeDescription string
}

// FieldBlock carries @field tags without a @class of its own. The fields
// belong to whichever class the anchor assignment targets.
type FieldBlock struct {
	Common
	Fields []model.Field
}

// Unclassified is a block that documents nothing the model keeps.
type Unclassified struct {
	Common
}

// Function builds the model function for b.
func (b *FunctionBlock) Function() model.Function {
	return model.Function{
		Name:              b.Def.Name,
		Namespace:         b.Def.Namespace,
		Description:       b.Description,
		Parameters:        b.Params,
		ReturnType:        b.ReturnType,
		ReturnDescription: b.ReturnDescription,
		NoDiscard:         b.NoDiscard,
		Static:            b.Def.Static,
		Local:             b.Def.Local,
		Examples:          b.Examples,
		See:               b.See,
	}
}

// Variable builds the model variable for b. A block without @type text
// falls back to its prose description.
func (b *VariableBlock) Variable() model.Variable {
	desc := b.TypeDescription
	if desc == "" {
		desc = b.Description
	}
	return model.Variable{
		Name:        b.Assign.Name,
		Type:        b.Type,
		Description: desc,
		Local:       b.Assign.Local,
	}
}

// ClassModel builds the model class for b, seeded with its co-located
// fields in tag order.
func (b *ClassBlock) ClassModel() *model.Class {
	return &model.Class{
		Name:        b.Class.Name,
		Description: b.Description,
		Parents:     slices.Clone(b.Class.Parents),
		Fields:      slices.Clone(b.Fields),
		See:         slices.Clone(b.See),
	}
}
