// Package config loads the optional luadoc.toml project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// FileName is the project file looked up by Find.
const FileName = "luadoc.toml"

// DefaultMaxFileSize is the default per-file size limit in bytes.
const DefaultMaxFileSize = 1_000_000

// Config is the project configuration. Command-line flags override it.
type Config struct {
	// Paths are the inputs used when none are given on the command line.
	Paths             []string `toml:"paths" validate:"dive,required"`
	Format            string   `toml:"format" validate:"omitempty,oneof=text markdown md toon json yaml yml"`
	Output            string   `toml:"output"`
	Inject            string   `toml:"inject"`
	Title             string   `toml:"title"`
	Visibility        string   `toml:"visibility" validate:"omitempty,oneof=public protected private"`
	ExcludeNamespaces []string `toml:"exclude_namespaces" validate:"dive,required"`
	IncludeTests      bool     `toml:"include_tests"`
	Cache             string   `toml:"cache"`
	MaxFileSize       int64    `toml:"max_file_size" validate:"gte=0"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Paths:       []string{"."},
		Format:      "text",
		Visibility:  "private",
		MaxFileSize: DefaultMaxFileSize,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report TOML keys rather than Go field names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks c against the field constraints.
func (c Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: must be one of %s, got %q", fe.Field(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", fe.Field(), fe.Param())
	case "required":
		return fmt.Sprintf("%s: empty entry", fe.Namespace())
	}
	return fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
}

// Load reads path on top of Default. Unknown keys are an error so that
// typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find looks for FileName in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// RelativeTo returns a copy of c whose relative file paths are joined onto
// dir, the directory the configuration was loaded from.
func (c Config) RelativeTo(dir string) Config {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	out := c
	out.Paths = make([]string, len(c.Paths))
	for i, p := range c.Paths {
		out.Paths[i] = join(p)
	}
	out.Output = join(c.Output)
	out.Inject = join(c.Inject)
	out.Cache = join(c.Cache)
	return out
}
