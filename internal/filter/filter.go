// Package filter selects the part of a Documentation that gets rendered.
package filter

import (
	"strings"

	"github.com/phobologic/luadoc/internal/model"
)

// Options controls selection. The zero value keeps everything.
type Options struct {
	// Visibility is the least visible field kept. Empty means private,
	// which keeps all fields.
	Visibility model.Visibility

	// ExcludeNamespaces drops classes, free functions and variables whose
	// name is one of these or lies beneath one of them.
	ExcludeNamespaces []string
}

// Apply returns a new Documentation with only the selected entities. doc
// is not modified; kept classes are copies whenever their fields change.
func Apply(doc *model.Documentation, opts Options) *model.Documentation {
	threshold := model.Private.Rank()
	if opts.Visibility != "" {
		threshold = opts.Visibility.Rank()
	}

	out := model.New()
	for _, c := range doc.Classes {
		if excluded(c.Name, opts.ExcludeNamespaces) {
			continue
		}
		out.Classes = append(out.Classes, selectFields(c, threshold))
	}
	for _, fn := range doc.Functions {
		if excluded(fn.QualifiedName(), opts.ExcludeNamespaces) {
			continue
		}
		out.Functions = append(out.Functions, fn)
	}
	for _, v := range doc.Variables {
		if excluded(v.Name, opts.ExcludeNamespaces) {
			continue
		}
		out.Variables = append(out.Variables, v)
	}
	return out
}

func selectFields(c *model.Class, threshold int) *model.Class {
	kept := 0
	for _, f := range c.Fields {
		if f.Visibility.Rank() <= threshold {
			kept++
		}
	}
	if kept == len(c.Fields) {
		return c
	}

	cp := *c
	cp.Fields = make([]model.Field, 0, kept)
	for _, f := range c.Fields {
		if f.Visibility.Rank() <= threshold {
			cp.Fields = append(cp.Fields, f)
		}
	}
	return &cp
}

// excluded reports whether name equals a namespace or is nested beneath it
// with "." or ":".
func excluded(name string, namespaces []string) bool {
	for _, ns := range namespaces {
		if ns == "" {
			continue
		}
		if name == ns || strings.HasPrefix(name, ns+".") || strings.HasPrefix(name, ns+":") {
			return true
		}
	}
	return false
}
