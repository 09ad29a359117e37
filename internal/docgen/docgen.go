// Package docgen is the entry point of the documentation core: it turns an
// ordered list of Lua sources into one merged Documentation.
//
// Processing is sequential and fail-fast. The first malformed anchor or
// unreadable file aborts the run and no Documentation is returned.
package docgen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/phobologic/luadoc/internal/assemble"
	"github.com/phobologic/luadoc/internal/block"
	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/merge"
	"github.com/phobologic/luadoc/internal/model"
)

// Source is one input file: a label used in messages and its content.
type Source struct {
	Label   string
	Content string
}

// ParseError is a fatal parse failure at a specific line.
type ParseError struct {
	Label string
	Line  int
	Text  string
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.Label, e.Line, e.Msg, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports an input that could not be read.
type IOError struct {
	Label string
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Label, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// File parses a single source into its per-file documentation. Diagnostics
// go to r, which may be nil.
func File(src Source, r diag.Reporter) (*assemble.FileDoc, error) {
	blocks, err := block.Scan(src.Label, src.Content, r)
	if err != nil {
		var ae *block.AnchorError
		if errors.As(err, &ae) {
			return nil, &ParseError{
				Label: src.Label,
				Line:  ae.Line,
				Text:  ae.Text,
				Msg:   "expected function declaration after documentation",
				Err:   err,
			}
		}
		return nil, fmt.Errorf("%s: %w", src.Label, err)
	}
	return assemble.File(src.Label, blocks, r), nil
}

// Generate parses and merges sources in order.
func Generate(sources []Source, r diag.Reporter) (*model.Documentation, error) {
	m := merge.New(r)
	for _, src := range sources {
		fd, err := File(src, r)
		if err != nil {
			return nil, err
		}
		m.Add(fd)
	}
	return m.Documentation(), nil
}

// GenerateFS reads each path from fsys, one at a time, and merges the
// results in the order given.
func GenerateFS(fsys fs.FS, paths []string, r diag.Reporter) (*model.Documentation, error) {
	return generate(paths, r, func(p string) ([]byte, error) { return fs.ReadFile(fsys, p) })
}

// GenerateFiles is GenerateFS over the operating system's file system.
// Paths are used as labels verbatim.
func GenerateFiles(paths []string, r diag.Reporter) (*model.Documentation, error) {
	return generate(paths, r, os.ReadFile)
}

func generate(paths []string, r diag.Reporter, read func(string) ([]byte, error)) (*model.Documentation, error) {
	m := merge.New(r)
	for _, p := range paths {
		data, err := read(p)
		if err != nil {
			return nil, &IOError{Label: p, Err: err}
		}
		fd, err := File(Source{Label: p, Content: string(data)}, r)
		if err != nil {
			return nil, err
		}
		m.Add(fd)
	}
	return m.Documentation(), nil
}
