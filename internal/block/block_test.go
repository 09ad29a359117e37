package block

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/model"
)

func scan(t *testing.T, lines ...string) ([]Block, *diag.Bag) {
	t.Helper()
	bag := &diag.Bag{}
	blocks, err := Scan("test.lua", strings.Join(lines, "\n"), bag)
	require.NoError(t, err)
	return blocks, bag
}

func single[T Block](t *testing.T, blocks []Block) T {
	t.Helper()
	require.Len(t, blocks, 1)
	b, ok := blocks[0].(T)
	require.Truef(t, ok, "block is %T", blocks[0])
	return b
}

func TestAccumulatorStates(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator("test.lua", nil)
	assert.Equal(t, Idle, acc.State())

	require.NoError(t, acc.Feed(1, "local x = 1"))
	assert.Equal(t, Idle, acc.State(), "code outside a block is ignored")

	require.NoError(t, acc.Feed(2, "---@class Foo"))
	assert.Equal(t, Accumulating, acc.State())
	require.NoError(t, acc.Feed(3, "---@field a number"))
	assert.Equal(t, Accumulating, acc.State())

	require.NoError(t, acc.Feed(4, "Foo = {}"))
	assert.Equal(t, Idle, acc.State())

	blocks := acc.Finish()
	require.Len(t, blocks, 1)
	assert.Equal(t, Anchor{Line: 4, Text: "Foo = {}"}, blocks[0].Info().Anchor)
	assert.Equal(t, 2, blocks[0].Info().StartLine)
}

func TestClassBlockKeepsFieldOrder(t *testing.T) {
	t.Parallel()

	blocks, _ := scan(t,
		"---@class Player : Entity the player",
		"---@field public name string display name",
		"---@field private hp integer",
		"---@field protected inv table<string, Item> inventory",
		"Player = {}",
	)

	cb := single[*ClassBlock](t, blocks)
	assert.Equal(t, "Player", cb.Class.Name)
	assert.Equal(t, []string{"Entity"}, cb.Class.Parents)
	assert.Equal(t, "the player", cb.Description)
	require.Len(t, cb.Fields, 3)
	assert.Equal(t, "name", cb.Fields[0].Name)
	assert.Equal(t, "hp", cb.Fields[1].Name)
	assert.Equal(t, model.Private, cb.Fields[1].Visibility)
	assert.Equal(t, "table<string, Item>", cb.Fields[2].Type)
	assert.Nil(t, cb.Method)
	assert.Nil(t, cb.Var)
}

func TestFunctionAnchors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		anchor string
		want   Definition
	}{
		{"function Config:load(path)", Definition{Name: "load", Namespace: "Config"}},
		{"function Config.new()", Definition{Name: "new", Namespace: "Config", Static: true}},
		{"function helper(a, b)", Definition{Name: "helper"}},
		{"function Server.Core.start()", Definition{Name: "start", Namespace: "Server.Core", Static: true}},
		{"function Server.Core:stop()", Definition{Name: "stop", Namespace: "Server.Core"}},
		{"Server.Core.run = function(x)", Definition{Name: "run", Namespace: "Server.Core", Static: true}},
		{"handler = function()", Definition{Name: "handler"}},
		{"local function secret()", Definition{Name: "secret", Local: true}},
		{"local cb = function(e)", Definition{Name: "cb", Local: true}},
		{"  function indented ()", Definition{Name: "indented"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.anchor, func(t *testing.T) {
			t.Parallel()
			blocks, _ := scan(t, "---@param x number", tt.anchor)
			fb := single[*FunctionBlock](t, blocks)
			assert.Equal(t, tt.want, fb.Def)
		})
	}
}

func TestFunctionBlockContent(t *testing.T) {
	t.Parallel()

	blocks, _ := scan(t,
		"--- Loads the configuration.",
		"--- ```lua",
		"--- local cfg = Config.load('a.json')",
		"---",
		"--- print(cfg.debug)",
		"--- ```",
		"--- Falls back to defaults.",
		"---@param path string file to read",
		"---@param opts? table<string, any>",
		"---@return Config|nil cfg the loaded config",
		"---@nodiscard",
		"---@see Config.save",
		"function Config.load(path, opts)",
	)

	fb := single[*FunctionBlock](t, blocks)
	fn := fb.Function()
	assert.Equal(t, "load", fn.Name)
	assert.Equal(t, "Config", fn.Namespace)
	assert.True(t, fn.Static)
	assert.Equal(t, "Loads the configuration. Falls back to defaults.", fn.Description)
	assert.Equal(t, []string{"local cfg = Config.load('a.json')", "print(cfg.debug)"}, fn.Examples)
	assert.Equal(t, []model.Parameter{
		{Name: "path", Type: "string", Description: "file to read"},
		{Name: "opts?", Type: "table<string, any>"},
	}, fn.Parameters)
	assert.Equal(t, "Config|nil", fn.ReturnType)
	assert.Equal(t, "cfg the loaded config", fn.ReturnDescription)
	assert.True(t, fn.NoDiscard)
	assert.Equal(t, []model.SeeReference{{Name: "Config.save", Kind: model.RefMethod}}, fn.See)
}

func TestMalformedAnchorIsFatal(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"local M = {}",
		"---@param x number",
		"---@return number",
		"MAX = 5",
		"return M",
	}, "\n")

	_, err := Scan("test.lua", content, nil)
	var ae *AnchorError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 4, ae.Line)
	assert.Equal(t, "MAX = 5", ae.Text)
	assert.Contains(t, ae.Error(), "line 4")
}

func TestMalformedAnchorShapes(t *testing.T) {
	t.Parallel()

	for _, anchor := range []string{
		"return M",
		"",
		"if x then",
		"function (x)",
		"Config[\"x\"] = function()",
	} {
		anchor := anchor
		t.Run(anchor, func(t *testing.T) {
			t.Parallel()
			_, err := Scan("test.lua", "--- does things\n"+anchor, nil)
			var ae *AnchorError
			require.Truef(t, errors.As(err, &ae), "err = %v", err)
			assert.Equal(t, 2, ae.Line)
		})
	}
}

func TestProseBlockOnAssignmentBecomesVariable(t *testing.T) {
	t.Parallel()

	blocks, _ := scan(t,
		"--- Maximum retry count.",
		"MAX_RETRIES = 3",
	)

	vb := single[*VariableBlock](t, blocks)
	v := vb.Variable()
	assert.Equal(t, model.Variable{Name: "MAX_RETRIES", Description: "Maximum retry count."}, v)

	// A function literal nested in the value does not make it a definition.
	blocks, _ = scan(t,
		"--- Handlers",
		"Handlers = setmetatable({}, { __index = function(t, k) end })",
	)
	vb = single[*VariableBlock](t, blocks)
	assert.Equal(t, model.Variable{Name: "Handlers", Description: "Handlers"}, vb.Variable())

	blocks, _ = scan(t,
		"--- Callback table.",
		"M.cb = { on = function() end }",
	)
	vb = single[*VariableBlock](t, blocks)
	assert.Equal(t, "M.cb", vb.Assign.Name)
}

func TestTypedVariableBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lines  []string
		assign Assignment
		typ    string
		desc   string
	}{
		{"global", []string{"---@type integer number of workers", "Workers = 4"}, Assignment{Name: "Workers"}, "integer", "number of workers"},
		{"local", []string{"---@type string", "local name = 'x'"}, Assignment{Name: "name", Local: true}, "string", ""},
		{"dotted", []string{"---@type boolean", "Config.debug = false"}, Assignment{Name: "Config.debug"}, "boolean", ""},
		{"type then prose", []string{"---@type number", "--- the answer", "Answer = 42"}, Assignment{Name: "Answer"}, "number", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			blocks, _ := scan(t, tt.lines...)
			vb := single[*VariableBlock](t, blocks)
			assert.Equal(t, tt.assign, vb.Assign)
			assert.Equal(t, tt.typ, vb.Type)
			assert.Equal(t, tt.desc, vb.TypeDescription)
		})
	}
}

func TestOrphanFieldBlock(t *testing.T) {
	t.Parallel()

	blocks, _ := scan(t,
		"---@field public debug boolean Enable debug logs",
		"Config.debug = true",
	)

	fb := single[*FieldBlock](t, blocks)
	require.Len(t, fb.Fields, 1)
	assert.Equal(t, "debug", fb.Fields[0].Name)
	assert.Equal(t, "Config.debug = true", fb.Anchor.Text)
}

func TestProseBeforeClassTag(t *testing.T) {
	t.Parallel()

	blocks, _ := scan(t,
		"--- Global settings.",
		"---@class Settings",
		"Settings = {}",
	)

	cb := single[*ClassBlock](t, blocks)
	assert.Equal(t, "Settings", cb.Class.Name)
	assert.Equal(t, "Global settings.", cb.Description)
	assert.Nil(t, cb.Var, "assignment to the class name is the class itself")
}

func TestClassBlockWithDifferentVariable(t *testing.T) {
	t.Parallel()

	blocks, _ := scan(t,
		"---@class Registry",
		"---@type Registry",
		"Services = {}",
	)

	cb := single[*ClassBlock](t, blocks)
	require.NotNil(t, cb.Var)
	assert.Equal(t, "Services", cb.Var.Assign.Name)
	assert.Equal(t, "Registry", cb.Var.Type)
}

func TestTrailingBlockDropped(t *testing.T) {
	t.Parallel()

	blocks, bag := scan(t,
		"---@class A",
		"A = {}",
		"--- dangling",
		"---@param x number",
	)

	require.Len(t, blocks, 1)
	assert.True(t, bag.Has(diag.TrailingBlock))
	assert.Equal(t, 3, bag.Items()[len(bag.Items())-1].Line)
}

func TestUnknownTagLeavesBlockUnclassified(t *testing.T) {
	t.Parallel()

	blocks, bag := scan(t,
		"---@diagnostic disable: lowercase-global",
		"foo = 1",
	)

	single[*Unclassified](t, blocks)
	assert.True(t, bag.Has(diag.UnknownTag))
}

func TestBareTagMarkerIsUnknown(t *testing.T) {
	t.Parallel()

	blocks, bag := scan(t,
		"---@",
		"foo = 1",
	)

	single[*Unclassified](t, blocks)
	assert.Equal(t, []diag.Code{diag.UnknownTag}, bag.Codes())
}

func TestFieldsInFunctionBlockIgnored(t *testing.T) {
	t.Parallel()

	blocks, bag := scan(t,
		"--- makes things",
		"---@field x number",
		"function make()",
	)

	fb := single[*FunctionBlock](t, blocks)
	assert.Equal(t, "make", fb.Def.Name)
	assert.True(t, bag.Has(diag.IgnoredFields))
}

func TestCRLFInput(t *testing.T) {
	t.Parallel()

	blocks, err := Scan("crlf.lua", "---@param a number\r\nfunction f(a)\r\n", nil)
	require.NoError(t, err)
	fb := single[*FunctionBlock](t, blocks)
	assert.Equal(t, "function f(a)", fb.Anchor.Text)
}

func TestBlocksAreSeparatedByCode(t *testing.T) {
	t.Parallel()

	blocks, _ := scan(t,
		"---@class A",
		"A = {}",
		"",
		"---@param v number",
		"function A:set(v)",
		"end",
		"---@type string",
		"A.name = ''",
	)

	require.Len(t, blocks, 3)
	assert.IsType(t, &ClassBlock{}, blocks[0])
	assert.IsType(t, &FunctionBlock{}, blocks[1])
	assert.IsType(t, &VariableBlock{}, blocks[2])
}

func TestIsVariableDeclaration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want bool
	}{
		{"x = 1", true},
		{"Config.General.framework = 'esx'", true},
		{"local x = {}", true},
		{"local a, b = 1, 2", true},
		{"functions = {}", true},
		{"x = function() end", false},
		{"local f = function(a)", false},
		{"function foo()", false},
		{"local function foo() return a == b end", false},
		{"x == y", false},
		{"return x", false},
		{"Handlers = setmetatable({}, { __index = function(t, k) end })", true},
		{"M.cb = { on = function() end }", true},
		{"local mt = { __call = function(self) end }", true},
		{"M.run = function(job)", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsVariableDeclaration(tt.line))
		})
	}
}

func TestParseAssignment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Assignment{Name: "a", Local: true}, ParseAssignment("local a, b = 1, 2"))
	assert.Equal(t, Assignment{Name: "Config.x"}, ParseAssignment("  Config.x = 5"))
	assert.Equal(t, Assignment{}, ParseAssignment("return Config"))
	assert.Equal(t, Assignment{}, ParseAssignment("local x"))
}
