// Package xref indexes a finished Documentation so that @see targets and
// parent types can be turned into links.
package xref

import (
	"sort"
	"strings"

	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/model"
)

// Target is a resolvable documentation entity.
type Target struct {
	Kind   model.RefKind
	Name   string // display name, e.g. "Config:load"
	Class  string // owning class for methods, the class itself for classes
	Anchor string
}

// Index maps names to targets.
type Index struct {
	targets map[string]Target
}

// Build indexes every class, class function and free function of doc.
// Methods are reachable as Class.name and Class:name. When two entities
// claim the same name, the first one wins.
func Build(doc *model.Documentation) *Index {
	ix := &Index{targets: make(map[string]Target)}
	add := func(key string, t Target) {
		if _, dup := ix.targets[key]; !dup {
			ix.targets[key] = t
		}
	}

	for _, c := range doc.Classes {
		add(c.Name, Target{Kind: model.RefClass, Name: c.Name, Class: c.Name, Anchor: ClassAnchor(c.Name)})
		for i := range c.Functions {
			fn := &c.Functions[i]
			t := Target{
				Kind:   model.RefMethod,
				Name:   c.Name + fn.Separator() + fn.Name,
				Class:  c.Name,
				Anchor: FunctionAnchor(c.Name, fn.Name),
			}
			add(c.Name+"."+fn.Name, t)
			add(c.Name+":"+fn.Name, t)
		}
	}
	for i := range doc.Functions {
		fn := &doc.Functions[i]
		add(fn.QualifiedName(), Target{
			Kind:   model.RefGlobalFunction,
			Name:   fn.QualifiedName(),
			Anchor: FunctionAnchor("", fn.QualifiedName()),
		})
	}
	return ix
}

// Lookup returns the target registered under name.
func (ix *Index) Lookup(name string) (Target, bool) {
	t, ok := ix.targets[name]
	return t, ok
}

// See resolves a @see reference. The inferred kind is only a hint: a
// lower-case class name or a capitalised global function still resolves.
func (ix *Index) See(ref model.SeeReference) (Target, bool) {
	return ix.Lookup(ref.Name)
}

// Parent resolves a parent type expression to a documented class. Generic
// arguments are ignored, so "List<Item>" resolves to class List.
func (ix *Index) Parent(expr string) (Target, bool) {
	name := expr
	if i := strings.IndexAny(name, "<{|"); i >= 0 {
		name = name[:i]
	}
	t, ok := ix.Lookup(strings.TrimSpace(name))
	if !ok || t.Kind != model.RefClass {
		return Target{}, false
	}
	return t, true
}

// builtinTypes are parent types that never name a documented class.
var builtinTypes = map[string]struct{}{
	"table":    {},
	"string":   {},
	"number":   {},
	"integer":  {},
	"boolean":  {},
	"function": {},
	"userdata": {},
	"thread":   {},
	"any":      {},
	"nil":      {},
}

// Check reports every @see reference and parent class that does not
// resolve. Builtin parent types such as table<K, V> are not reported.
func Check(doc *model.Documentation, ix *Index, r diag.Reporter) {
	for _, c := range doc.Classes {
		for _, p := range c.Parents {
			if _, ok := ix.Parent(p); ok {
				continue
			}
			if _, builtin := builtinTypes[baseType(p)]; builtin {
				continue
			}
			diag.Infof(r, diag.UnknownParent, "", 0, "class %s: parent %s is not a documented class", c.Name, p)
		}
		checkSee(ix, r, c.Name, c.See)
		for i := range c.Functions {
			fn := &c.Functions[i]
			checkSee(ix, r, c.Name+fn.Separator()+fn.Name, fn.See)
		}
	}
	for i := range doc.Functions {
		fn := &doc.Functions[i]
		checkSee(ix, r, fn.QualifiedName(), fn.See)
	}
}

func checkSee(ix *Index, r diag.Reporter, owner string, refs []model.SeeReference) {
	for _, ref := range refs {
		if _, ok := ix.See(ref); !ok {
			diag.Infof(r, diag.UnresolvedSee, "", 0, "%s: @see %s does not resolve", owner, ref.Name)
		}
	}
}

func baseType(expr string) string {
	if i := strings.IndexAny(expr, "<{|["); i >= 0 {
		expr = expr[:i]
	}
	return strings.TrimSpace(expr)
}

// Group is a set of classes sharing a top-level namespace.
type Group struct {
	Name    string
	Classes []*model.Class
}

// Groups buckets classes by namespace. A class A.B joins group A when A is
// itself a documented class; any other class heads its own group. Groups
// are sorted by name and keep discovery order inside.
func Groups(doc *model.Documentation) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, c := range doc.Classes {
		key := c.Name
		if root, _, ok := strings.Cut(c.Name, "."); ok && doc.Class(root) != nil {
			key = root
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Name: key})
		}
		groups[i].Classes = append(groups[i].Classes, c)
	}
	for _, g := range groups {
		// The namespace class leads its group.
		sort.SliceStable(g.Classes, func(i, j int) bool {
			return g.Classes[i].Name == g.Name && g.Classes[j].Name != g.Name
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// ClassAnchor is the link anchor of a class section.
func ClassAnchor(class string) string {
	return slug("class-" + class)
}

// FunctionAnchor is the link anchor of a function; class is empty for free
// functions.
func FunctionAnchor(class, name string) string {
	if class == "" {
		return slug("fn-" + name)
	}
	return slug("fn-" + class + "-" + name)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
