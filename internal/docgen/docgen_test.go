package docgen

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/model"
)

const configLua = `---@class Config
---@field public name string Resource name
Config = {}

--- Loads configuration from disk.
---@param path string
---@return Config
---@nodiscard
function Config.load(path)
end
`

const debugLua = `---@field public debug boolean Enable debug logs
Config.debug = true

---@type integer
Config.level = 1
`

func TestGenerateAcrossFiles(t *testing.T) {
	t.Parallel()

	bag := &diag.Bag{}
	doc, err := Generate([]Source{
		{Label: "config.lua", Content: configLua},
		{Label: "debug.lua", Content: debugLua},
	}, bag)
	require.NoError(t, err)

	require.Len(t, doc.Classes, 1)
	c := doc.Classes[0]
	assert.Equal(t, "Config", c.Name)
	// Variables are attributed before orphan field blocks.
	assert.Equal(t, []model.Field{
		{Name: "name", Type: "string", Visibility: model.Public, Description: "Resource name"},
		{Name: "level", Type: "integer", Visibility: model.Public},
		{Name: "debug", Type: "boolean", Visibility: model.Public, Description: "Enable debug logs"},
	}, c.Fields)

	require.Len(t, c.Functions, 1)
	fn := c.Functions[0]
	assert.Equal(t, "load", fn.Name)
	assert.True(t, fn.Static)
	assert.True(t, fn.NoDiscard)
	assert.Equal(t, "Config", fn.ReturnType)
	assert.Equal(t, "Loads configuration from disk.", fn.Description)

	assert.Empty(t, doc.Functions)
	assert.Empty(t, doc.Variables)
	assert.False(t, bag.Has(diag.UnresolvedField))
}

func TestGenerateOrderMatters(t *testing.T) {
	t.Parallel()

	// The field file comes first, so its class is unknown when it is merged.
	bag := &diag.Bag{}
	doc, err := Generate([]Source{
		{Label: "debug.lua", Content: debugLua},
		{Label: "config.lua", Content: configLua},
	}, bag)
	require.NoError(t, err)

	c := doc.Class("Config")
	require.NotNil(t, c)
	assert.Nil(t, c.Field("debug"))
	assert.True(t, bag.Has(diag.UnresolvedField))
	require.Len(t, doc.Variables, 1)
	assert.Equal(t, "Config.level", doc.Variables[0].Name)
}

func TestParseErrorStopsRun(t *testing.T) {
	t.Parallel()

	bad := "local M = {}\n---@param x number\n---@return boolean\nMAX = 5\n"
	doc, err := Generate([]Source{
		{Label: "good.lua", Content: configLua},
		{Label: "bad.lua", Content: bad},
		{Label: "never.lua", Content: debugLua},
	}, nil)
	require.Error(t, err)
	assert.Nil(t, doc)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad.lua", pe.Label)
	assert.Equal(t, 4, pe.Line)
	assert.Equal(t, "MAX = 5", pe.Text)
	assert.Equal(t, `bad.lua:4: expected function declaration after documentation: "MAX = 5"`, err.Error())
}

func TestNestedFunctionLiteralIsVariable(t *testing.T) {
	t.Parallel()

	doc, err := Generate([]Source{
		{Label: "handlers.lua", Content: "--- Handlers\nHandlers = setmetatable({}, { __index = function(t, k) end })\n"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, doc.Variables, 1)
	assert.Equal(t, model.Variable{Name: "Handlers", Description: "Handlers"}, doc.Variables[0])
	assert.Empty(t, doc.Functions)
}

func TestGenerateFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"lua/config.lua": {Data: []byte(configLua)},
		"lua/debug.lua":  {Data: []byte(debugLua)},
	}
	doc, err := GenerateFS(fsys, []string{"lua/config.lua", "lua/debug.lua"}, nil)
	require.NoError(t, err)
	assert.Len(t, doc.Class("Config").Fields, 3)

	_, err = GenerateFS(fsys, []string{"lua/config.lua", "lua/missing.lua"}, nil)
	var ioe *IOError
	require.True(t, errors.As(err, &ioe))
	assert.Equal(t, "lua/missing.lua", ioe.Label)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestGenerateFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.lua")
	require.NoError(t, os.WriteFile(path, []byte(configLua), 0o644))

	doc, err := GenerateFiles([]string{path}, nil)
	require.NoError(t, err)
	assert.NotNil(t, doc.Class("Config"))
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()

	doc, err := Generate(nil, nil)
	require.NoError(t, err)
	assert.True(t, doc.Empty())

	doc, err = Generate([]Source{{Label: "plain.lua", Content: "local x = 1\n-- just a comment\n"}}, nil)
	require.NoError(t, err)
	assert.True(t, doc.Empty())
}
