// Package coverage finds public Lua function definitions that are not
// preceded by a documentation block.
//
// It parses with tree-sitter rather than the line scanner used for
// generation, so it also sees definitions the scanner never looks at.
package coverage

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/luadoc/internal/annotation"
	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/lang"
)

// Definition is one public function definition.
type Definition struct {
	Path       string
	Line       int
	Name       string
	Signature  string
	Documented bool
}

// Report is the result of a coverage scan.
type Report struct {
	Files       int
	Definitions []Definition
}

// Documented returns how many definitions carry documentation.
func (r *Report) Documented() int {
	n := 0
	for _, d := range r.Definitions {
		if d.Documented {
			n++
		}
	}
	return n
}

// Missing returns the undocumented definitions in scan order.
func (r *Report) Missing() []Definition {
	var out []Definition
	for _, d := range r.Definitions {
		if !d.Documented {
			out = append(out, d)
		}
	}
	return out
}

// Emit reports every undocumented definition as a warning.
func (r *Report) Emit(rep diag.Reporter) {
	for _, d := range r.Missing() {
		diag.Warnf(rep, diag.Undocumented, d.Path, d.Line, "%s has no documentation", d.Signature)
	}
}

// ExtractDefinitions parses source and returns its non-local function
// definitions in source order. path is used only for Definition.Path.
func ExtractDefinitions(parser *sitter.Parser, query *sitter.Query, source []byte, path string) []Definition {
	if len(source) == 0 {
		return nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	lines := strings.Split(string(source), "\n")
	var defs []Definition

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var nameNode, defNode *sitter.Node
		for _, c := range match.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "name":
				nameNode = c.Node
			case "definition.function":
				defNode = c.Node
			}
		}
		if nameNode == nil || defNode == nil || lang.IsLocal(defNode, source) {
			continue
		}

		row, err := safecast.Conv[int](defNode.StartPoint().Row)
		if err != nil {
			continue
		}

		name := lang.NodeText(nameNode, source)
		defs = append(defs, Definition{
			Path:       path,
			Line:       row + 1,
			Name:       name,
			Signature:  name + parameters(defNode, source),
			Documented: row > 0 && annotation.IsDocLine(lines[row-1]),
		})
	}

	return defs
}

// parameters returns the collapsed parameter list of a definition, looking
// through an assignment to the function literal it holds.
func parameters(node *sitter.Node, source []byte) string {
	if p := node.ChildByFieldName("parameters"); p != nil {
		return lang.CollapseWhitespace(lang.NodeText(p, source))
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if s := parameters(node.NamedChild(i), source); s != "" {
			return s
		}
	}
	return ""
}

// Scan reads and checks paths concurrently, using up to jobs workers
// (GOMAXPROCS when jobs <= 0). Each worker uses its own parser. Files that
// cannot be read are reported to r and skipped. Definitions are returned
// in path order regardless of scheduling.
func Scan(ctx context.Context, paths []string, jobs int, r diag.Reporter) (*Report, error) {
	query, err := lang.Lua.GetDefinitionQuery()
	if err != nil {
		return nil, fmt.Errorf("loading lua query: %w", err)
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes only its own index.
	results := make([][]Definition, len(paths))
	readErrs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(path)
			if err != nil {
				readErrs[i] = err
				return nil
			}
			parser := lang.Lua.NewParser()
			defer parser.Close()
			results[i] = ExtractDefinitions(parser, query, source, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{}
	for i, path := range paths {
		if readErrs[i] != nil {
			diag.Warnf(r, diag.ReadFailed, path, 0, "skipped: %v", readErrs[i])
			continue
		}
		rep.Files++
		rep.Definitions = append(rep.Definitions, results[i]...)
	}
	return rep, nil
}
