package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 256, cfg.Combat.CharacterCacheSize)
	assert.Equal(t, 10*time.Minute, cfg.Combat.CharacterCacheTTL)
	assert.True(t, cfg.Combat.AutosaveEnabled)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.False(t, cfg.UseDiscord())
	assert.True(t, cfg.UseRedis())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DISCORD_TOKEN":               "token",
		"DISCORD_CHANNEL_ID":          "1234",
		"REDIS_ADDR":                  "redis:6379",
		"REDIS_DB":                    "2",
		"LOG_LEVEL":                   "debug",
		"LOG_FORMAT":                  "json",
		"COMBAT_CHARACTER_CACHE_SIZE": "16",
		"COMBAT_CHARACTER_CACHE_TTL":  "30s",
		"COMBAT_AUTOSAVE":             "false",
	})
	require.NoError(t, err)

	assert.True(t, cfg.UseDiscord())
	assert.Equal(t, "1234", cfg.Discord.ChannelID)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 16, cfg.Combat.CharacterCacheSize)
	assert.Equal(t, 30*time.Second, cfg.Combat.CharacterCacheTTL)
	assert.False(t, cfg.Combat.AutosaveEnabled)

	logCfg := cfg.Logging("initiative-bot")
	assert.True(t, logCfg.IsJSON())
	assert.Equal(t, "initiative-bot", logCfg.Service)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{name: "zero cache size", environ: map[string]string{"COMBAT_CHARACTER_CACHE_SIZE": "0"}},
		{name: "negative cache ttl", environ: map[string]string{"COMBAT_CHARACTER_CACHE_TTL": "-1m"}},
		{name: "token without channel", environ: map[string]string{"DISCORD_TOKEN": "token"}},
		{name: "unknown log level", environ: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "bad duration", environ: map[string]string{"COMBAT_CHARACTER_CACHE_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.True(t, dnderr.IsValidation(err))
		})
	}
}
