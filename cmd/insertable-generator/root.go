package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"insertable-generator/internal/common"
	"insertable-generator/internal/config"
	"insertable-generator/internal/logger"
)

// Global flags
const (
	configFlag    = "config"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
)

type cfgKey struct{}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   common.GeneratorName,
		Short: "Generate insertable projections of annotated Go structs",
		Long: `Generate Insertable<Name> projection types for Go structs annotated with
//insertable:generate, together with by-value and by-reference conversions.

Annotations (doc comment of the struct):
  //insertable:generate               request generation
  //insertable:table <binding>        table binding, carried verbatim
  //insertable:changeset <options>    changeset configuration, carried verbatim
  //insertable:exclude id, created_at fields left out (default: created_at, updated_at, id)

Examples:
  insertable-generator generate ./...                  # write insertable_gen.go files
  insertable-generator generate --dry-run ./models     # print instead of writing
  insertable-generator check ./...                     # fail if generated files are stale`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.String(configFlag, "", "Path to a config file (default: ./insertable.yaml if present)")
	pf.String(logLevelFlag, "", "Log level: debug, info, warn, error (default info)")
	pf.String(logFormatFlag, "", "Log format: console or json (default console)")

	root.AddCommand(newGenerateCommand())
	root.AddCommand(newCheckCommand())

	return root
}

// setup loads the configuration and initializes logging for every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// Init only configures the first logger; later runs in the same process
	// still honour the requested level.
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	logger.L().Debug("configuration loaded",
		zap.Stringer("log_level", logger.GetLevel()),
		zap.String("filename", cfg.Output.Filename),
		zap.String("changeset_mode", cfg.Metadata.ChangesetMode),
		zap.Bool("allow_namespaced_table", cfg.Metadata.AllowNamespacedTable))

	cmd.SetContext(contextWithConfig(cmd, cfg))

	return nil
}

func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(cfgKey{}).(*config.Config)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}

	return cfg, nil
}

func contextWithConfig(cmd *cobra.Command, cfg *config.Config) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, cfgKey{}, cfg)
}
