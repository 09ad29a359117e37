package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/phobologic/luadoc/internal/model"
)

// Text writes the plain console dump:
//
//	=== DOCUMENTATION ===
//
//	--- CLASSES ---
//	Player : Entity
//	  public name: string - display name
//	  spawn(x: number) -> boolean - puts the player in the world
//
// Field visibility and name columns are padded by display width so that
// rows with wide characters stay aligned. Empty sections are omitted.
func Text(w io.Writer, doc *model.Documentation) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "=== DOCUMENTATION ===")

	if len(doc.Classes) > 0 {
		fmt.Fprint(bw, "\n--- CLASSES ---\n")
		for _, c := range doc.Classes {
			writeClass(bw, c)
			fmt.Fprintln(bw)
		}
	}

	if len(doc.Functions) > 0 {
		fmt.Fprint(bw, "\n--- FUNCTIONS ---\n")
		for i := range doc.Functions {
			fmt.Fprintln(bw, functionLine(&doc.Functions[i]))
		}
	}

	if len(doc.Variables) > 0 {
		fmt.Fprint(bw, "\n--- VARIABLES ---\n")
		for _, v := range doc.Variables {
			fmt.Fprintln(bw, variableLine(v))
		}
	}

	return bw.Flush()
}

func writeClass(w io.Writer, c *model.Class) {
	header := c.Name
	if len(c.Parents) > 0 {
		header += " : " + strings.Join(c.Parents, ", ")
	}
	fmt.Fprintln(w, header)

	visWidth, nameWidth := 0, 0
	for _, f := range c.Fields {
		visWidth = max(visWidth, runewidth.StringWidth(string(f.Visibility)))
		nameWidth = max(nameWidth, runewidth.StringWidth(f.Name))
	}
	for _, f := range c.Fields {
		line := fmt.Sprintf("  %s %s %s",
			runewidth.FillRight(string(f.Visibility), visWidth),
			runewidth.FillRight(f.Name+":", nameWidth+1),
			f.Type)
		fmt.Fprintln(w, withDescription(line, f.Description))
	}
	for i := range c.Functions {
		fmt.Fprintln(w, "  "+functionLine(&c.Functions[i]))
	}
}

func functionLine(fn *model.Function) string {
	line := fn.Signature()
	if fn.Static {
		line = "static " + line
	}
	return withDescription(line, fn.Description)
}

func variableLine(v model.Variable) string {
	scope := "global"
	if v.Local {
		scope = "local"
	}
	return withDescription(fmt.Sprintf("%s %s: %s", scope, v.Name, v.Type), v.Description)
}

func withDescription(line, desc string) string {
	if desc == "" {
		return line
	}
	return line + " - " + desc
}
