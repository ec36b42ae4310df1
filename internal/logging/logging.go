// Package logging builds the process logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the encoder of the process logger.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config holds the logger settings exposed on the command line.
type Config struct {
	Level  string
	Format Format
}

func (c Config) zapConfig() (zap.Config, error) {
	var cfg zap.Config
	switch c.Format {
	case FormatConsole, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case FormatJSON:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return zap.Config{}, fmt.Errorf("invalid log format %q", c.Format)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if strings.TrimSpace(c.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(c.Level); err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		level = zap.NewAtomicLevelAt(parsed)
	}
	cfg.Level = level
	cfg.DisableStacktrace = true

	return cfg, nil
}

// New builds a logger writing to stderr.
func New(c Config) (*zap.Logger, error) {
	cfg, err := c.zapConfig()
	if err != nil {
		return nil, err
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
