package annotation

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phobologic/luadoc/internal/model"
)

// Marker prefixes every documentation comment line.
const Marker = "---"

// FenceMarker opens and closes an example block inside prose.
const FenceMarker = "```"

// Tag identifies the kind of a documentation line.
type Tag string

const (
	TagNone      Tag = "" // plain prose line
	TagClass     Tag = "class"
	TagField     Tag = "field"
	TagParam     Tag = "param"
	TagReturn    Tag = "return"
	TagType      Tag = "type"
	TagSee       Tag = "see"
	TagNoDiscard Tag = "nodiscard"
	TagFunction  Tag = "function"
)

// ErrMissingType is returned when a field or param tag has a name but no type.
var ErrMissingType = errors.New("missing type")

// ErrEmptyPayload is returned when a tag that needs a payload has none.
var ErrEmptyPayload = errors.New("empty payload")

// Line is a documentation comment line split into tag and payload.
type Line struct {
	Tag     Tag
	Raw     string // the tag keyword as written, for unknown tags
	Payload string // text after the tag keyword, or the prose for TagNone
}

// IsDocLine reports whether line is a documentation comment line.
func IsDocLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Marker)
}

// Split breaks a documentation comment line into its tag and payload.
// Known reports whether the tag is one luadoc understands; prose lines are
// always known and a bare "@" with no tag word never is.
func Split(line string) (l Line, known bool) {
	body := strings.TrimPrefix(strings.TrimSpace(line), Marker)
	if !strings.HasPrefix(body, "@") {
		return Line{Tag: TagNone, Payload: strings.TrimSpace(body)}, true
	}
	word, rest := splitWord(body[1:])
	l = Line{Tag: Tag(word), Raw: word, Payload: rest}
	if word == "" {
		return l, false
	}
	switch l.Tag {
	case TagClass, TagField, TagParam, TagReturn, TagType, TagSee, TagNoDiscard, TagFunction:
		return l, true
	}
	return l, false
}

// IsFence reports whether prose opens or closes an example block. The
// marker may be followed by a language name.
func IsFence(prose string) bool {
	return strings.HasPrefix(prose, FenceMarker)
}

// ClassTag is a parsed @class payload.
type ClassTag struct {
	Name        string
	Parents     []string
	Description string
}

// ParseClass parses "Name[:Parent[, Parent]] [description]". A leading
// parenthesised attribute such as "(exact)" is ignored.
func ParseClass(payload string) (ClassTag, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "(") {
		if end := strings.IndexByte(payload, ')'); end >= 0 {
			payload = strings.TrimSpace(payload[end+1:])
		}
	}
	head, rest := splitWord(payload)
	if head == "" {
		return ClassTag{}, ErrEmptyPayload
	}

	var ct ClassTag
	var inherit string
	switch {
	case strings.Contains(head, ":"):
		name, parent, _ := strings.Cut(head, ":")
		ct.Name = strings.TrimSpace(name)
		inherit = strings.TrimSpace(strings.TrimSpace(parent) + " " + rest)
	case strings.HasPrefix(rest, ":"):
		ct.Name = head
		inherit = strings.TrimSpace(rest[1:])
	default:
		ct.Name = head
		ct.Description = rest
		return ct, nil
	}
	if ct.Name == "" {
		return ClassTag{}, ErrEmptyPayload
	}

	ct.Parents, ct.Description = splitParents(inherit)
	return ct, nil
}

// splitParents consumes a comma separated list of parent types from the
// front of s and returns the remainder as the description.
func splitParents(s string) (parents []string, description string) {
	for {
		typ, rest := SplitTypeDescription(s)
		more := strings.HasSuffix(typ, ",")
		typ = strings.TrimSpace(strings.TrimSuffix(typ, ","))
		if typ != "" {
			parents = append(parents, typ)
		}
		if !more || rest == "" {
			return parents, rest
		}
		s = rest
	}
}

// ParseField parses "[visibility] name TypeAndDescription".
func ParseField(payload string) (model.Field, error) {
	name, rest := splitWord(payload)
	if name == "" {
		return model.Field{}, ErrEmptyPayload
	}
	vis := model.Public
	if v, ok := model.ParseVisibility(name); ok {
		vis = v
		name, rest = splitWord(rest)
	}
	if rest == "" {
		return model.Field{}, ErrMissingType
	}
	typ, desc := SplitTypeDescription(rest)
	return model.Field{Name: name, Type: typ, Visibility: vis, Description: desc}, nil
}

// ParseParam parses "name TypeAndDescription".
func ParseParam(payload string) (model.Parameter, error) {
	name, rest := splitWord(payload)
	if name == "" {
		return model.Parameter{}, ErrEmptyPayload
	}
	if rest == "" {
		return model.Parameter{}, ErrMissingType
	}
	typ, desc := SplitTypeDescription(rest)
	return model.Parameter{Name: name, Type: typ, Description: desc}, nil
}

// ParseReturn parses a @return payload.
func ParseReturn(payload string) (typ, description string) {
	return SplitTypeDescription(payload)
}

// ParseType parses a @type payload.
func ParseType(payload string) (typ, description string) {
	return SplitTypeDescription(payload)
}

// ParseSee parses "name [description]" and infers the reference kind.
func ParseSee(payload string) (model.SeeReference, error) {
	name, desc := splitWord(payload)
	if name == "" {
		return model.SeeReference{}, ErrEmptyPayload
	}
	return model.SeeReference{Name: name, Kind: InferRefKind(name), Description: desc}, nil
}

// InferRefKind classifies a @see target by its shape: dotted names are
// methods, lower-case names are global functions, the rest are classes.
func InferRefKind(name string) model.RefKind {
	if strings.Contains(name, ".") {
		return model.RefMethod
	}
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsLower(r) {
		return model.RefGlobalFunction
	}
	return model.RefClass
}
