package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/luadoc/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		force  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "init [flags] [dir]",
		Short: "Write a default " + config.FileName,
		Long: `init writes a ` + config.FileName + ` holding the default settings to dir
(default "."). An existing file is left alone unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := config.Default().Write(&buf); err != nil {
				return err
			}
			if dryRun {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileName)

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			p.notef("wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	return cmd
}
