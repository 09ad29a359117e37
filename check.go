package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phobologic/luadoc/internal/coverage"
)

func newCheckCmd() *cobra.Command {
	var (
		strict bool
		jobs   int
	)

	cmd := &cobra.Command{
		Use:   "check [flags] [path ...]",
		Short: "Report global and module functions without documentation",
		Long: `check parses each Lua file and lists every non-local function definition
that is not directly preceded by a --- documentation comment.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			paths, err := inputPaths(cmd, args, cfg)
			if err != nil {
				return err
			}

			rep, err := coverage.Scan(cmd.Context(), paths, jobs, p)
			if err != nil {
				return err
			}
			rep.Emit(p)

			total := len(rep.Definitions)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d/%d functions documented in %d files\n",
				rep.Documented(), total, rep.Files)

			if missing := total - rep.Documented(); strict && missing > 0 {
				return fmt.Errorf("%d undocumented functions", missing)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any function is undocumented")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel workers (default GOMAXPROCS)")
	return cmd
}
