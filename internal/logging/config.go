package logging

import (
	"log/slog"
	"strings"
)

// Config represents logger configuration
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // "json", "text"
	Service     string
	Environment string
	AddSource   bool
}

// DefaultConfig returns defaults used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Level:       LevelInfo,
		Format:      FormatText,
		Service:     DefaultService,
		Environment: EnvironmentDev,
	}
}

// LogLevel converts the configured level to slog.Level
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn, LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsJSON returns true if format is JSON
func (c Config) IsJSON() bool {
	return strings.EqualFold(c.Format, FormatJSON)
}

func (c Config) baseAttrs() []any {
	var attrs []any
	if c.Service != "" {
		attrs = append(attrs, AttrService, c.Service)
	}
	if c.Environment != "" {
		attrs = append(attrs, AttrEnvironment, c.Environment)
	}
	return attrs
}
