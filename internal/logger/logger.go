// Package logger provides the structured logger of the generator CLI.
//
// Uses zap with an AtomicLevel so --log-level can be applied after Init.
// Console format for terminals, JSON for CI logs.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// global is the package-level logger instance.
	global      *zap.Logger
	atomicLevel = zap.NewAtomicLevel()
	once        sync.Once
)

// Init initializes the global logger.
// level: debug, info, warn, error
// format: json or console
func Init(level, format string) error {
	var initErr error

	once.Do(func() {
		if err := atomicLevel.UnmarshalText([]byte(level)); err != nil {
			initErr = fmt.Errorf("parse log level %q: %w", level, err)
			return
		}

		var cfg zap.Config

		switch format {
		case "console":
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			cfg.DisableStacktrace = true
		case "json":
			cfg = zap.NewProductionConfig()
		default:
			initErr = fmt.Errorf("unknown log format %q", format)
			return
		}

		cfg.Level = atomicLevel

		logger, err := cfg.Build()
		if err != nil {
			initErr = fmt.Errorf("build logger: %w", err)
			return
		}

		global = logger
	})

	return initErr
}

// SetLevel changes the log level of the global logger.
func SetLevel(level string) error {
	return atomicLevel.UnmarshalText([]byte(level))
}

// GetLevel returns the current log level.
func GetLevel() zapcore.Level {
	return atomicLevel.Level()
}

// L returns the global logger, or a no-op logger if Init has not succeeded.
func L() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}

	return global
}

// Sync flushes any buffered log entries.
func Sync() error {
	if global == nil {
		return nil
	}

	return global.Sync()
}
