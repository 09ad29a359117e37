// Package lang holds the tree-sitter Lua grammar and its embedded query
// file.
package lang

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

//go:embed queries/*.scm
var queryFS embed.FS

var whitespaceRe = regexp.MustCompile(`\s+`)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language
	queryOnce  sync.Once
	query      *sitter.Query
	queryErr   error
}

// Lua is the only language luadoc reads.
var Lua = &Language{
	Name:       "lua",
	Extensions: []string{".lua"},
	lang:       lua.GetLanguage(),
}

// Languages maps language names to their configuration.
var Languages = map[string]*Language{
	Lua.Name: Lua,
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// GetDefinitionQuery returns the compiled function definition query (safe to
// share across goroutines).
func (l *Language) GetDefinitionQuery() (*sitter.Query, error) {
	l.queryOnce.Do(func() {
		data, err := queryFS.ReadFile(fmt.Sprintf("queries/%s.scm", l.Name))
		if err != nil {
			l.queryErr = fmt.Errorf("reading query file: %w", err)
			return
		}
		q, err := sitter.NewQuery(data, l.lang)
		if err != nil {
			l.queryErr = fmt.Errorf("compiling query: %w", err)
			return
		}
		l.query = q
	})
	return l.query, l.queryErr
}

// ForExtension returns the language name for a file extension, or "" if
// unsupported.
func ForExtension(ext string) string {
	for _, l := range Languages {
		for _, e := range l.Extensions {
			if strings.EqualFold(e, ext) {
				return l.Name
			}
		}
	}
	return ""
}

// IsLocal reports whether a definition node declares a local: either
// "local function f()" or "local f = function()".
func IsLocal(def *sitter.Node, source []byte) bool {
	if strings.HasPrefix(NodeText(def, source), "local") {
		return true
	}
	p := def.Parent()
	return p != nil && p.Type() == "variable_declaration"
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
