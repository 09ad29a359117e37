package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	sentinelStart = "<!-- luadoc:start -->"
	sentinelEnd   = "<!-- luadoc:end -->"
)

// injectFile replaces the sentinel block of the file at path with body,
// appending one if there is none. A missing file is created.
func injectFile(path, body string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	updated := applySection(string(existing), wrapSection(body))
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func wrapSection(body string) string {
	return sentinelStart + "\n" + strings.TrimRight(body, "\n") + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) == 0 {
		return section + "\n"
	}
	return content + "\n" + section + "\n"
}
