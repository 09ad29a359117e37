// Package toon implements TOON (Token-Oriented Object Notation) encoding
// of a Documentation.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/luadoc/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Documentation into TOON format. title, when set, is
// emitted as a leading scalar.
func Encode(doc *model.Documentation, title string) string {
	var parts []string

	if title != "" {
		parts = append(parts, fmt.Sprintf("title: %s", encodeValue(title)))
	}

	var classRows, fieldRows, methodRows [][]string
	for _, c := range doc.Classes {
		classRows = append(classRows, []string{
			c.Name,
			strings.Join(c.Parents, " "),
			c.Description,
		})
		for _, f := range c.Fields {
			fieldRows = append(fieldRows, []string{
				c.Name,
				f.Name,
				f.Type,
				string(f.Visibility),
				f.Description,
			})
		}
		for i := range c.Functions {
			methodRows = append(methodRows, functionRow(c.Name, &c.Functions[i]))
		}
	}
	parts = append(parts, formatTabular("classes", []string{"name", "parents", "description"}, classRows))
	parts = append(parts, formatTabular("fields", []string{"class", "name", "type", "visibility", "description"}, fieldRows))
	parts = append(parts, formatTabular("methods", functionColumns, methodRows))

	var fnRows [][]string
	for i := range doc.Functions {
		fn := &doc.Functions[i]
		fnRows = append(fnRows, functionRow(fn.Namespace, fn))
	}
	parts = append(parts, formatTabular("functions", functionColumns, fnRows))

	var varRows [][]string
	for _, v := range doc.Variables {
		varRows = append(varRows, []string{v.Name, v.Type, v.Description})
	}
	parts = append(parts, formatTabular("variables", []string{"name", "type", "description"}, varRows))

	return strings.Join(parts, "\n")
}

var functionColumns = []string{"owner", "name", "kind", "signature", "returns", "description"}

func functionRow(owner string, fn *model.Function) []string {
	kind := "function"
	switch {
	case fn.Namespace != "" && fn.Static:
		kind = "static"
	case fn.Namespace != "":
		kind = "method"
	}
	returns := fn.ReturnDescription
	if fn.NoDiscard {
		returns = strings.TrimSpace("nodiscard " + returns)
	}
	return []string{owner, fn.Name, kind, fn.Signature(), returns, fn.Description}
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
