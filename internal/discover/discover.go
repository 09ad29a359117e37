// Package discover finds the Lua source files to document.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/luadoc/internal/lang"
)

// FileEntry represents a discovered Lua file.
type FileEntry struct {
	Path string // Relative to the discovery root
	Size int64
}

// Options controls discovery.
type Options struct {
	// IncludeTests keeps busted specs and other test files.
	IncludeTests bool
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	"lua_modules":  {},
	".luarocks":    {},
	".rocks":       {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"build":        {},
	"dist":         {},
	"vendor":       {},
}

// Files discovers Lua files under root, sorted by path. Inside a git
// checkout the tracked and untracked-but-not-ignored files are used;
// elsewhere a top-level .gitignore is honoured.
func Files(root string, opts Options) ([]FileEntry, error) {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if lang.ForExtension(filepath.Ext(name)) != lang.Lua.Name {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if !opts.IncludeTests && IsTestFile(rel) {
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		results = append(results, FileEntry{Path: rel, Size: size})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// Expand turns command-line arguments into an ordered list of Lua file
// paths. Files are kept in argument order and taken as given, whatever
// their extension; each directory contributes its discovered files in
// sorted order. A path listed twice is kept once, at its first position.
func Expand(args []string, opts Options) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		clean := filepath.Clean(p)
		if _, dup := seen[clean]; dup {
			return
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input path: %w", err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		entries, err := Files(arg, opts)
		if err != nil {
			return nil, fmt.Errorf("discovering files in %s: %w", arg, err)
		}
		for _, e := range entries {
			add(filepath.Join(arg, e.Path))
		}
	}
	return out, nil
}

// testDirs are directory names whose contents are test code.
var testDirs = map[string]struct{}{
	"spec":  {},
	"specs": {},
	"test":  {},
	"tests": {},
}

// IsTestFile reports whether a slash or OS separated relative path names a
// Lua test file: anything under a spec/ or test/ directory, or a file named
// *_spec.lua, *_test.lua or test_*.lua.
func IsTestFile(path string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, dir := range parts[:len(parts)-1] {
		if _, ok := testDirs[dir]; ok {
			return true
		}
	}
	base := strings.TrimSuffix(parts[len(parts)-1], ".lua")
	return strings.HasSuffix(base, "_spec") ||
		strings.HasSuffix(base, "_test") ||
		strings.HasPrefix(base, "test_")
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard", "--", "*.lua")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
