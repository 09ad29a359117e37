// Package annotation parses the payloads of ---@tag comment lines.
package annotation

import (
	"strings"
	"unicode"
)

// SplitTypeDescription splits a tag payload into its leading type token and
// the free-text description that follows it.
//
// The type ends at the first whitespace that is outside quotes and outside
// any <...> or {...} nesting, so "table<string, any> a map" yields
// ("table<string, any>", "a map"). Without such a boundary the whole input
// is the type.
func SplitTypeDescription(input string) (typ, description string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ""
	}

	var (
		quote    rune
		angles   int
		braces   int
		boundary = -1
	)

scan:
	for i, r := range input {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '<':
			angles++
		case r == '>':
			angles--
		case r == '{':
			braces++
		case r == '}':
			braces--
		case angles == 0 && braces == 0 && unicode.IsSpace(r):
			boundary = i
			break scan
		}
	}

	if boundary < 0 {
		return input, ""
	}
	return strings.TrimSpace(input[:boundary]), strings.TrimSpace(input[boundary:])
}

// splitWord splits s at its first run of whitespace.
func splitWord(s string) (head, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
