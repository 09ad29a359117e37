// Package render writes a finished Documentation in one of the supported
// output formats.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/luadoc/internal/model"
	"github.com/phobologic/luadoc/internal/toon"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format in help order.
var Formats = []Format{FormatText, FormatMarkdown, FormatTOON, FormatJSON, FormatYAML}

// ParseFormat accepts a format name case-insensitively, plus the "md" and
// "yml" aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case FormatText, FormatMarkdown, FormatTOON, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (use text, markdown, toon, json or yaml)", s)
}

// Options carries renderer settings that are not part of the model.
type Options struct {
	Title string
}

// Render writes doc to w in the given format.
func Render(w io.Writer, doc *model.Documentation, format Format, opts Options) error {
	switch format {
	case FormatText:
		return Text(w, doc)
	case FormatMarkdown:
		return Markdown(w, doc, opts)
	case FormatTOON:
		_, err := fmt.Fprintln(w, toon.Encode(doc, opts.Title))
		return err
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return encoder.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

// String renders doc into a string.
func String(doc *model.Documentation, format Format, opts Options) (string, error) {
	var b strings.Builder
	if err := Render(&b, doc, format, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}
