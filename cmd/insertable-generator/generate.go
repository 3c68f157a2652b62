package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"insertable-generator/internal/config"
	"insertable-generator/internal/gen"
	"insertable-generator/internal/logger"
	"insertable-generator/internal/manifest"
)

// Generation flags
const (
	manifestFlag      = "manifest"
	outputFlag        = "output"
	changesetModeFlag = "changeset-mode"
	dryRunFlag        = "dry-run"
)

func outputFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		outputFlag: &cobraflags.StringFlag{
			Name:  outputFlag,
			Value: "",
			Usage: "Name of the generated file in each package (default insertable_gen.go)",
		},
		changesetModeFlag: &cobraflags.StringFlag{
			Name:  changesetModeFlag,
			Value: "",
			Usage: "Changeset policy: explicit (annotation required) or default (annotation synthesized)",
		},
	}
}

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [patterns]",
		Short: "Write insertable projections for annotated structs",
		Long: `Load the packages matching the patterns (default ./...), resolve every struct
marked //insertable:generate and write one generated file per package.

Nothing is written when any package reports an error. Generated files of
packages that no longer request projections are removed.`,
		RunE: generateCommand,
	}

	flags := outputFlags()
	flags[manifestFlag] = &cobraflags.StringFlag{
		Name:  manifestFlag,
		Value: "",
		Usage: "Write a YAML manifest of the generated projections to this path",
	}

	cobraflags.RegisterMap(cmd, flags)
	cmd.Flags().Bool(dryRunFlag, false, "Print the generated files instead of writing them")

	return cmd
}

func generateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}

	dryRun, err := cmd.Flags().GetBool(dryRunFlag)
	if err != nil {
		return err
	}

	log := logger.L()

	results, err := process(cmd.Context(), cfg, log, args)
	if err != nil {
		return err
	}

	var (
		files    []*gen.GeneratedFile
		obsolete []string
	)

	for _, r := range results {
		if r.File != nil {
			files = append(files, r.File)
		}

		obsolete = append(obsolete, r.Obsolete...)
	}

	if dryRun {
		out := cmd.OutOrStdout()
		for _, f := range files {
			fmt.Fprintf(out, "// %s\n%s\n", f.Path(), f.Content)
		}

		for _, p := range obsolete {
			fmt.Fprintf(out, "// %s would be removed\n", p)
		}

		return nil
	}

	if err := gen.WriteFiles(files); err != nil {
		return err
	}

	if err := gen.RemoveFiles(obsolete); err != nil {
		return err
	}

	for _, r := range results {
		if r.File != nil {
			log.Info("generated",
				zap.String("package", r.Plan.Package.Path),
				zap.String("file", r.File.Path()),
				zap.Int("types", len(r.Plan.Projections)))
		}
	}

	for _, p := range obsolete {
		log.Info("removed obsolete file", zap.String("file", p))
	}

	if cfg.Manifest.Path != "" {
		if err := writeManifest(cfg, results); err != nil {
			return err
		}

		log.Info("manifest written", zap.String("path", cfg.Manifest.Path))
	}

	return nil
}

func writeManifest(cfg *config.Config, results []result) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	entries := make([]manifest.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, manifest.Entry{Plan: r.Plan, File: r.File})
	}

	m := manifest.Build(entries, cfg.PlanConfig().Metadata.ChangesetMode, wd)

	return manifest.WriteFile(m, cfg.Manifest.Path)
}
