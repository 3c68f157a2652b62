// Package config provides configuration management for insertable-generator.
//
// Configuration is loaded from, in increasing priority:
//  1. Default values
//  2. insertable.yaml in the working directory, or the file given by --config
//  3. Environment variables prefixed INSERTABLE_ (output.filename -> INSERTABLE_OUTPUT_FILENAME)
//  4. Command-line flags bound with BindFlags
package config

import (
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"insertable-generator/internal/gen"
	"insertable-generator/internal/metadata"
	"insertable-generator/internal/plan"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "INSERTABLE"

// Config is the root configuration structure.
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Manifest ManifestConfig `mapstructure:"manifest"`
	Log      LogConfig      `mapstructure:"log"`
}

// OutputConfig controls the generated file.
type OutputConfig struct {
	Filename          string `mapstructure:"filename"`
	ByValueMethod     string `mapstructure:"by_value_method"`
	ByReferenceMethod string `mapstructure:"by_reference_method"`
}

// MetadataConfig controls annotation extraction.
type MetadataConfig struct {
	ChangesetMode        string `mapstructure:"changeset_mode"`
	AllowNamespacedTable bool   `mapstructure:"allow_namespaced_table"`
}

// ManifestConfig controls the YAML manifest. An empty path disables it.
type ManifestConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the config file, the environment and flags.
// An empty path looks for an optional insertable.yaml in the working
// directory; an explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("insertable")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults, env vars and flags
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"log-format":     "log.format",
	"manifest":       "manifest.path",
	"output":         "output.filename",
	"changeset-mode": "metadata.changeset_mode",
}

// bindFlags binds the flags present in fs. Unset flags do not override
// lower-priority sources.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Output
	v.SetDefault("output.filename", gen.DefaultFilename)
	v.SetDefault("output.by_value_method", plan.DefaultByValueMethod)
	v.SetDefault("output.by_reference_method", plan.DefaultByReferenceMethod)

	// Metadata
	v.SetDefault("metadata.changeset_mode", string(metadata.ChangesetExplicit))
	v.SetDefault("metadata.allow_namespaced_table", false)

	// Manifest
	v.SetDefault("manifest.path", "")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate checks for configuration errors.
func (c *Config) Validate() error {
	if _, err := metadata.ParseChangesetMode(c.Metadata.ChangesetMode); err != nil {
		return fmt.Errorf("metadata.changeset_mode: %w", err)
	}

	name := c.Output.Filename
	if name == "" || filepath.Base(name) != name || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
		return fmt.Errorf("output.filename must be a plain .go file name, got %q", name)
	}

	for key, method := range map[string]string{
		"output.by_value_method":     c.Output.ByValueMethod,
		"output.by_reference_method": c.Output.ByReferenceMethod,
	} {
		if !token.IsIdentifier(method) || !token.IsExported(method) {
			return fmt.Errorf("%s must be an exported Go identifier, got %q", key, method)
		}
	}

	if c.Output.ByValueMethod == c.Output.ByReferenceMethod {
		return fmt.Errorf("output.by_value_method and output.by_reference_method must differ, both are %q",
			c.Output.ByValueMethod)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}

	return nil
}

// PlanConfig returns the resolution settings.
func (c *Config) PlanConfig() plan.Config {
	mode, _ := metadata.ParseChangesetMode(c.Metadata.ChangesetMode)

	return plan.Config{
		Metadata: metadata.Options{
			ChangesetMode:        mode,
			AllowNamespacedTable: c.Metadata.AllowNamespacedTable,
		},
		ByValueMethod:     c.Output.ByValueMethod,
		ByReferenceMethod: c.Output.ByReferenceMethod,
	}
}

// GeneratorConfig returns the code generation settings.
func (c *Config) GeneratorConfig() gen.GeneratorConfig {
	cfg := gen.DefaultGeneratorConfig()
	cfg.Filename = c.Output.Filename

	return cfg
}
