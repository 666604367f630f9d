package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/initiative-bot/internal/announce"
	"github.com/KirkDiggler/initiative-bot/internal/combat"
	"github.com/KirkDiggler/initiative-bot/internal/config"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	"github.com/KirkDiggler/initiative-bot/internal/effects"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/logging"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/characters"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/initiative"
	combatService "github.com/KirkDiggler/initiative-bot/internal/services/combat"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.SetDefault(cfg.Logging("initiative-bot"), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot shut down")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	calc := dice.NewCalculator(&dice.CalculatorConfig{Logger: logger})
	registry := effects.NewRegistry(&effects.Env{Dice: calc, Logger: logger})

	charRepo, saves, closeStore := setupRepositories(ctx, cfg, registry, logger)
	defer closeStore()

	store, err := characters.NewCached(&characters.CachedConfig{
		Next:   charRepo,
		Size:   cfg.Combat.CharacterCacheSize,
		TTL:    cfg.Combat.CharacterCacheTTL,
		Logger: logger,
	})
	if err != nil {
		return dnderr.Wrap(err, "failed to create character cache")
	}
	registry.SetStore(store)
	manager := effects.NewManager(registry, logger)

	announcer, closeDiscord, err := setupAnnouncer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDiscord()

	scheduler, err := combat.NewScheduler(&combat.Config{
		Characters: store,
		Effects:    manager,
		Dice:       calc,
		Announcer:  announcer,
		Saves:      saves,
		Autosave:   cfg.Combat.AutosaveEnabled,
		Logger:     logger,
	})
	if err != nil {
		return dnderr.Wrap(err, "failed to create scheduler")
	}

	svc := combatService.NewService(&combatService.ServiceConfig{
		Scheduler:  scheduler,
		Characters: store,
		Effects:    manager,
		Saves:      saves,
		Dice:       calc,
		Attacks:    registry.Env().Attacks,
		Logger:     logger,
	})

	// Pick up where the last process left off
	if _, err := svc.LoadBattle(ctx, initiative.AutosaveName); err != nil {
		if !dnderr.IsNotFound(err) {
			logger.Warn("Failed to restore autosave", "error", err)
		}
	}
	status := svc.Status(ctx)
	logger.Info("Combat service ready",
		"combat_id", scheduler.CombatID(),
		"state", status.State,
		"round", status.Round,
		"current", status.Current,
		"autosave", status.Autosave,
	)

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Serving metrics", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()
	return nil
}

// setupRepositories connects to redis and falls back to in-memory stores
// when it cannot be reached.
func setupRepositories(ctx context.Context, cfg *config.Config, codec characters.EffectCodec, logger *slog.Logger) (characters.Repository, initiative.Repository, func()) {
	if cfg.UseRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Failed to connect to Redis, using in-memory storage", "addr", cfg.Redis.Addr, "error", err)
			_ = client.Close()
		} else {
			logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
			return characters.NewRedis(client, codec),
				initiative.NewRedis(&initiative.RedisConfig{Client: client}),
				func() {
					if err := client.Close(); err != nil {
						logger.Error("Failed to close Redis client", "error", err)
					}
				}
		}
	}

	logger.Warn("Using in-memory storage, data will not persist between restarts")
	return characters.NewInMemoryRepository(), initiative.NewInMemory(nil), func() {}
}

// setupAnnouncer posts to the configured Discord channel, or to the log
// when no bot token is set.
func setupAnnouncer(cfg *config.Config, logger *slog.Logger) (announce.Announcer, func(), error) {
	if !cfg.UseDiscord() {
		logger.Info("No Discord token configured, announcing to the log")
		return announce.NewLog(logger), func() {}, nil
	}

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, nil, dnderr.Wrap(err, "error creating Discord session")
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages

	if err := dg.Open(); err != nil {
		return nil, nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "error opening Discord connection")
	}

	announcer, err := announce.NewDiscord(&announce.DiscordConfig{
		Session:   dg,
		ChannelID: cfg.Discord.ChannelID,
		Logger:    logger,
	})
	if err != nil {
		_ = dg.Close()
		return nil, nil, err
	}

	return announcer, func() {
		if err := dg.Close(); err != nil {
			logger.Error("Failed to close Discord session", "error", err)
		}
	}, nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
