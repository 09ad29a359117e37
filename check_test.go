package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moduleLua = `local M = {}

--- Greets someone.
---@param name string
function M.greet(name)
end

function M.reset()
end

local function helper()
end

return M
`

func TestCheck(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "mod.lua", moduleLua)

	out, stderr := runOK(t, "check", "--color", "off", dir)
	assert.Equal(t, "1/2 functions documented in 1 files\n", out)
	assert.Contains(t, stderr, "Warning: ")
	assert.Contains(t, stderr, "M.reset")
	assert.Contains(t, stderr, "[undocumented]")
	assert.NotContains(t, stderr, "helper")
}

func TestCheckStrict(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "mod.lua", moduleLua)

	var stdout, stderr bytes.Buffer
	err := run([]string{"check", "--strict", "-j", "2", dir}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 undocumented functions")
	assert.Contains(t, stdout.String(), "1/2 functions documented")
}

func TestCheckStrictClean(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "ok.lua", "--- Documented.\nfunction ok()\nend\n")

	out, stderr := runOK(t, "check", "--strict", dir)
	assert.Equal(t, "1/1 functions documented in 1 files\n", out)
	assert.Empty(t, stderr)
}
