package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/logging"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig `envPrefix:"DISCORD_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Log     LogConfig     `envPrefix:"LOG_"`
	Combat  CombatConfig  `envPrefix:"COMBAT_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

// DiscordConfig holds Discord-specific configuration. Without a token
// announcements go to the log.
type DiscordConfig struct {
	Token     string `env:"TOKEN"`
	ChannelID string `env:"CHANNEL_ID" validate:"required_with=Token"`
}

// RedisConfig holds Redis-specific configuration. An empty address keeps
// everything in memory.
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0" validate:"min=0"`
}

// LogConfig mirrors logging.Config
type LogConfig struct {
	Level       string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
	Format      string `env:"FORMAT" envDefault:"text" validate:"oneof=text json"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	AddSource   bool   `env:"ADD_SOURCE"`
}

// CombatConfig tunes the engine
type CombatConfig struct {
	CharacterCacheSize int           `env:"CHARACTER_CACHE_SIZE" envDefault:"256" validate:"gt=0"`
	CharacterCacheTTL  time.Duration `env:"CHARACTER_CACHE_TTL" envDefault:"10m" validate:"gt=0"`
	AutosaveEnabled    bool          `env:"AUTOSAVE" envDefault:"true"`
}

// MetricsConfig controls the Prometheus endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `env:"ADDR" envDefault:":9090"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from environ instead of the process
// environment when it is non-nil.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeValidation, "failed to parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the derived invariants of the configuration.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return dnderr.Wrap(err, "invalid configuration")
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", e.Namespace(), e.Tag()))
	}
	return dnderr.Validation("invalid configuration: " + strings.Join(msgs, "; "))
}

// Logging builds the logger configuration for service.
func (c *Config) Logging(service string) logging.Config {
	return logging.Config{
		Level:       c.Log.Level,
		Format:      c.Log.Format,
		Service:     service,
		Environment: c.Log.Environment,
		AddSource:   c.Log.AddSource,
	}
}

// UseDiscord reports whether announcements go to a Discord channel.
func (c *Config) UseDiscord() bool {
	return c.Discord.Token != ""
}

// UseRedis reports whether state is kept in Redis.
func (c *Config) UseRedis() bool {
	return c.Redis.Addr != ""
}
