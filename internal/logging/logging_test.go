package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:       LevelInfo,
		Format:      FormatJSON,
		Service:     "test-service",
		Environment: "test",
	}, &buf)

	logger.Info("test message", "key", "value", "number", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-service", entry[AttrService])
	assert.Equal(t, "test", entry[AttrEnvironment])
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "value", entry["key"])
	assert.EqualValues(t, 42, entry["number"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatText}, &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, Config{Level: tt.level}.LogLevel())
		})
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: FormatJSON}, &buf)

	ctx := WithCombat(context.Background(), "combat-1")
	id, ok := CombatIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "combat-1", id)

	Component(FromContext(ctx, base), "initiative").Info("turn")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "combat-1", entry[AttrCombatID])
	assert.Equal(t, "initiative", entry[AttrComponent])
}

func TestFromContextWithoutCombat(t *testing.T) {
	_, ok := CombatIDFromContext(context.Background())
	assert.False(t, ok)
	assert.NotNil(t, FromContext(context.Background(), nil))
}
