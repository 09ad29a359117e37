package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/phobologic/luadoc/internal/model"
	"github.com/phobologic/luadoc/internal/xref"
)

const defaultTitle = "API Reference"

const globalsAnchor = "globals"

// Markdown writes a single Markdown page: a contents list of classes
// grouped by namespace, one section per class, then the free functions
// and variables. Known classes and @see targets become in-page links.
func Markdown(w io.Writer, doc *model.Documentation, opts Options) error {
	m := &markdown{w: bufio.NewWriter(w), ix: xref.Build(doc)}

	title := opts.Title
	if title == "" {
		title = defaultTitle
	}
	m.printf("# %s\n", title)

	groups := xref.Groups(doc)
	hasGlobals := len(doc.Functions) > 0 || len(doc.Variables) > 0
	if len(groups) > 0 || hasGlobals {
		m.printf("\n## Contents\n\n")
		for _, g := range groups {
			headed := g.Classes[0].Name == g.Name
			for _, c := range g.Classes {
				indent := ""
				if headed && c.Name != g.Name {
					indent = "  "
				}
				m.printf("%s- [%s](#%s)\n", indent, c.Name, xref.ClassAnchor(c.Name))
			}
		}
		if hasGlobals {
			m.printf("- [Globals](#%s)\n", globalsAnchor)
		}
	}

	if len(doc.Classes) > 0 {
		m.printf("\n## Classes\n")
		for _, g := range groups {
			for _, c := range g.Classes {
				m.class(c)
			}
		}
	}

	if hasGlobals {
		m.printf("\n<a id=\"%s\"></a>\n\n## Globals\n", globalsAnchor)
		if len(doc.Functions) > 0 {
			m.printf("\n### Functions\n")
			for i := range doc.Functions {
				fn := &doc.Functions[i]
				m.function(xref.FunctionAnchor("", fn.QualifiedName()), fn.QualifiedName(), fn, "####")
			}
		}
		if len(doc.Variables) > 0 {
			m.printf("\n### Variables\n\n")
			m.printf("| Name | Type | Description |\n|---|---|---|\n")
			for _, v := range doc.Variables {
				m.printf("| `%s` | %s | %s |\n", cell(v.Name), code(v.Type), cell(v.Description))
			}
		}
	}

	return m.w.Flush()
}

type markdown struct {
	w  *bufio.Writer
	ix *xref.Index
}

func (m *markdown) printf(format string, args ...any) {
	fmt.Fprintf(m.w, format, args...)
}

func (m *markdown) class(c *model.Class) {
	m.printf("\n<a id=\"%s\"></a>\n\n### %s\n", xref.ClassAnchor(c.Name), c.Name)

	if c.Description != "" {
		m.printf("\n%s\n", c.Description)
	}

	if len(c.Parents) > 0 {
		parents := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			if t, ok := m.ix.Parent(p); ok {
				parents[i] = fmt.Sprintf("[%s](#%s)", p, t.Anchor)
			} else {
				parents[i] = "`" + p + "`"
			}
		}
		m.printf("\n**Inherits:** %s\n", strings.Join(parents, ", "))
	}

	if len(c.Fields) > 0 {
		m.printf("\n| Field | Type | Visibility | Description |\n|---|---|---|---|\n")
		for _, f := range c.Fields {
			m.printf("| `%s` | %s | %s | %s |\n", cell(f.Name), code(f.Type), f.Visibility, cell(f.Description))
		}
	}

	m.see(c.See)

	if len(c.Functions) > 0 {
		m.printf("\n#### Methods\n")
		for i := range c.Functions {
			fn := &c.Functions[i]
			m.function(xref.FunctionAnchor(c.Name, fn.Name), c.Name+fn.Separator()+fn.Name, fn, "#####")
		}
	}
}

func (m *markdown) function(anchor, name string, fn *model.Function, heading string) {
	sig := name + strings.TrimPrefix(fn.Signature(), fn.Name)
	m.printf("\n<a id=\"%s\"></a>\n\n%s `%s`\n", anchor, heading, sig)

	if fn.Description != "" {
		m.printf("\n%s\n", fn.Description)
	}

	if len(fn.Parameters) > 0 {
		m.printf("\n**Parameters**\n\n")
		for _, p := range fn.Parameters {
			m.printf("- `%s` (`%s`)", p.Name, p.Type)
			if p.Description != "" {
				m.printf(": %s", p.Description)
			}
			m.printf("\n")
		}
	}

	if fn.ReturnType != "" {
		m.printf("\n**Returns** `%s`", fn.ReturnType)
		if fn.ReturnDescription != "" {
			m.printf(": %s", fn.ReturnDescription)
		}
		m.printf("\n")
	}
	if fn.NoDiscard {
		m.printf("\n> The return value must not be discarded.\n")
	}

	if len(fn.Examples) > 0 {
		m.printf("\n**Example**\n\n```lua\n%s\n```\n", strings.Join(fn.Examples, "\n"))
	}

	m.see(fn.See)
}

func (m *markdown) see(refs []model.SeeReference) {
	if len(refs) == 0 {
		return
	}
	m.printf("\n**See also**\n\n")
	for _, ref := range refs {
		label := "`" + ref.Name + "`"
		if t, ok := m.ix.See(ref); ok {
			label = fmt.Sprintf("[%s](#%s)", t.Name, t.Anchor)
		}
		if ref.Description != "" {
			m.printf("- %s - %s\n", label, ref.Description)
		} else {
			m.printf("- %s\n", label)
		}
	}
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func cell(s string) string {
	return cellEscaper.Replace(s)
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + cell(s) + "`"
}
