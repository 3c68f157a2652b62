package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"insertable-generator/internal/gen"
	"insertable-generator/internal/logger"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [patterns]",
		Short: "Verify that generated files are up to date",
		Long: `Regenerate every package matching the patterns (default ./...) in memory and
compare the result with the files on disk. Fails when a generated file is
missing, differs from what generate would write, or is no longer needed.`,
		RunE: checkCommand,
	}

	cobraflags.RegisterMap(cmd, outputFlags())

	return cmd
}

func checkCommand(cmd *cobra.Command, args []string) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}

	results, err := process(cmd.Context(), cfg, logger.L(), args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	outdated := 0

	for _, r := range results {
		if r.File != nil {
			status, err := gen.Compare(r.File)
			if err != nil {
				return err
			}

			if status != gen.StatusUpToDate {
				outdated++
			}

			fmt.Fprintf(out, "%s: %s\n", r.File.Path(), status)
		}

		for _, p := range r.Obsolete {
			outdated++

			fmt.Fprintf(out, "%s: %s\n", p, gen.StatusObsolete)
		}
	}

	if outdated > 0 {
		return fmt.Errorf("%d generated file(s) out of date, run generate", outdated)
	}

	return nil
}
