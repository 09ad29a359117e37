// luadoc extracts LuaLS annotation comments into API documentation.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phobologic/luadoc/internal/cache"
	"github.com/phobologic/luadoc/internal/config"
	"github.com/phobologic/luadoc/internal/diag"
	"github.com/phobologic/luadoc/internal/discover"
	"github.com/phobologic/luadoc/internal/docgen"
	"github.com/phobologic/luadoc/internal/filter"
	"github.com/phobologic/luadoc/internal/model"
	"github.com/phobologic/luadoc/internal/render"
	"github.com/phobologic/luadoc/internal/xref"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

// generateFlags holds the values of the generate-only flags. They override
// the configuration file only when set on the command line.
type generateFlags struct {
	format            string
	output            string
	inject            string
	title             string
	visibility        string
	excludeNamespaces []string
	cache             string
	maxFileSize       int64
}

func newRootCmd() *cobra.Command {
	var gf generateFlags

	rootCmd := &cobra.Command{
		Use:   "luadoc [flags] [path ...]",
		Short: "Generate API documentation from LuaLS annotations",
		Long: `luadoc reads ---@class, ---@field, ---@param and related annotation
comments from Lua sources and writes the documented API.

Paths may be files or directories. Files are processed in the order given;
directories contribute their Lua files in sorted order. Without paths the
configured paths (default ".") are used.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, &gf)
		},
	}
	rootCmd.SetVersionTemplate("luadoc {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize diagnostics (auto|on|off)")
	pf.BoolP("quiet", "q", false, "suppress warnings")
	pf.BoolP("verbose", "v", false, "also show informational diagnostics")
	pf.String("config", "", "config file (default: nearest "+config.FileName+")")
	pf.Bool("include-tests", false, "include spec/ and test/ files when expanding directories")

	f := rootCmd.Flags()
	f.StringVarP(&gf.format, "format", "f", "", "output format ("+formatNames()+")")
	f.StringVarP(&gf.output, "output", "o", "", "write to file instead of stdout")
	f.StringVar(&gf.inject, "inject", "", "replace the luadoc section of this file")
	f.StringVar(&gf.title, "title", "", "document title for markdown and toon output")
	f.StringVar(&gf.visibility, "visibility", "", "least visible field to include (public|protected|private)")
	f.StringArrayVar(&gf.excludeNamespaces, "exclude-namespace", nil, "drop entities under this namespace (repeatable)")
	f.StringVar(&gf.cache, "cache", "", "cache file for the merged documentation")
	f.Int64Var(&gf.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "skip files larger than this many bytes (0 disables)")
	f.BoolP("version", "V", false, "show version and exit")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newInitCmd())
	return rootCmd
}

func formatNames() string {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

func runGenerate(cmd *cobra.Command, args []string, gf *generateFlags) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = gf.format
	}
	if flags.Changed("output") {
		cfg.Output = gf.output
	}
	if flags.Changed("inject") {
		cfg.Inject = gf.inject
	}
	if flags.Changed("title") {
		cfg.Title = gf.title
	}
	if flags.Changed("visibility") {
		cfg.Visibility = gf.visibility
	}
	if flags.Changed("exclude-namespace") {
		cfg.ExcludeNamespaces = gf.excludeNamespaces
	}
	if flags.Changed("cache") {
		cfg.Cache = gf.cache
	}
	if flags.Changed("max-file-size") {
		cfg.MaxFileSize = gf.maxFileSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Output != "" && cfg.Inject != "" {
		return errors.New("output and inject cannot both be set")
	}

	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	paths, err := inputPaths(cmd, args, cfg)
	if err != nil {
		return err
	}
	paths = filterBySize(paths, cfg.MaxFileSize, p)
	if len(paths) == 0 {
		return errors.New("no Lua files found (all exceeded size limit)")
	}

	doc, err := generate(paths, cfg.Cache, p)
	if err != nil {
		return err
	}

	doc = filter.Apply(doc, filter.Options{
		Visibility:        model.Visibility(cfg.Visibility),
		ExcludeNamespaces: cfg.ExcludeNamespaces,
	})
	out, err := render.String(doc, format, render.Options{Title: cfg.Title})
	if err != nil {
		return err
	}

	switch {
	case cfg.Inject != "":
		if err := injectFile(cfg.Inject, out); err != nil {
			return err
		}
		p.notef("updated luadoc section in %s", cfg.Inject)
	case cfg.Output != "":
		if err := os.WriteFile(cfg.Output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.Output, err)
		}
	default:
		_, _ = io.WriteString(cmd.OutOrStdout(), out)
	}
	return nil
}

// generate returns the merged documentation for paths, from the cache when
// it is fresh. An unreadable cache is reported and rebuilt.
func generate(paths []string, cachePath string, p *printer) (*model.Documentation, error) {
	if cachePath != "" {
		doc, ok, err := cache.Load(cachePath, paths)
		switch {
		case err != nil:
			p.warnf("%v (rebuilding)", err)
		case ok:
			return doc, nil
		}
	}

	doc, err := docgen.GenerateFiles(paths, p)
	if err != nil {
		return nil, err
	}
	xref.Check(doc, xref.Build(doc), p)

	if cachePath != "" {
		if err := cache.Store(cachePath, paths, doc); err != nil {
			p.warnf("writing cache: %v", err)
		}
	}
	return doc, nil
}

// loadConfig reads the --config file, or the nearest luadoc.toml above the
// working directory. Without either the defaults are used.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil {
			return config.Config{}, err
		}
		if !ok {
			return config.Default(), nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	return cfg.RelativeTo(filepath.Dir(path)), nil
}

// inputPaths expands the positional arguments, or the configured paths
// when there are none.
func inputPaths(cmd *cobra.Command, args []string, cfg config.Config) ([]string, error) {
	includeTests, err := cmd.Root().PersistentFlags().GetBool("include-tests")
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		args = cfg.Paths
	}
	paths, err := discover.Expand(args, discover.Options{IncludeTests: includeTests || cfg.IncludeTests})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("no Lua files found")
	}
	return paths, nil
}

func filterBySize(paths []string, maxSize int64, p *printer) []string {
	if maxSize <= 0 {
		return paths
	}
	var kept []string
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			kept = append(kept, path) // the read reports it
			continue
		}
		if fi.Size() > maxSize {
			p.warnf("%s: skipped (>%d bytes)", path, maxSize)
			continue
		}
		kept = append(kept, path)
	}
	return kept
}

// printer writes diagnostics to stderr. It implements diag.Reporter.
type printer struct {
	w       io.Writer
	quiet   bool
	verbose bool
	warn    *color.Color
	note    *color.Color
}

func newPrinter(cmd *cobra.Command) (*printer, error) {
	pf := cmd.Root().PersistentFlags()
	colorFlag, err := pf.GetString("color")
	if err != nil {
		return nil, err
	}
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return nil, err
	}
	verbose, err := pf.GetBool("verbose")
	if err != nil {
		return nil, err
	}

	w := cmd.ErrOrStderr()
	var useColor bool
	switch colorFlag {
	case "on":
		useColor = true
	case "off":
	case "auto":
		useColor = isTerminal(w)
	default:
		return nil, fmt.Errorf("invalid --color %q (use auto, on or off)", colorFlag)
	}

	p := &printer{
		w:       w,
		quiet:   quiet,
		verbose: verbose,
		warn:    color.New(color.FgYellow, color.Bold),
		note:    color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.warn, p.note} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p, nil
}

func (p *printer) Report(d diag.Diagnostic) {
	if d.Severity == diag.SevInfo {
		if p.verbose && !p.quiet {
			_, _ = fmt.Fprintf(p.w, "%s %s\n", p.note.Sprint("Note:"), d)
		}
		return
	}
	p.warnf("%s", d)
}

func (p *printer) warnf(format string, args ...any) {
	if p.quiet {
		return
	}
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.warn.Sprint("Warning:"), fmt.Sprintf(format, args...))
}

func (p *printer) notef(format string, args ...any) {
	if p.quiet {
		return
	}
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
