// Package logging builds the process slog logger and carries combat
// correlation through contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey string

const combatIDKey ctxKey = "combatID"

// New builds a logger writing to w (stdout when nil).
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel(),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.IsJSON() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(cfg.baseAttrs()...)
}

// SetDefault builds a logger and installs it as the slog default.
func SetDefault(cfg Config, w io.Writer) *slog.Logger {
	logger := New(cfg, w)
	slog.SetDefault(logger)
	return logger
}

// Component returns base (or the default logger) tagged with a component
// name.
func Component(base *slog.Logger, name string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With(AttrComponent, name)
}

// WithCombat returns a new context carrying the combat ID.
func WithCombat(ctx context.Context, combatID string) context.Context {
	return context.WithValue(ctx, combatIDKey, combatID)
}

// CombatIDFromContext extracts the combat ID from the context, if present.
func CombatIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(combatIDKey).(string)
	return id, ok && id != ""
}

// FromContext returns base with the combat_id attribute when the context
// carries one.
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id, ok := CombatIDFromContext(ctx); ok {
		return base.With(AttrCombatID, id)
	}
	return base
}
