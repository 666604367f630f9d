package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/initiative-bot/internal/config"
	"github.com/KirkDiggler/initiative-bot/internal/effects"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/characters"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/initiative"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	// Test connection
	if _, pingErr := client.Ping(ctx).Result(); pingErr != nil {
		log.Fatalf("Failed to connect to Redis: %v", pingErr)
	}

	saves, err := initiative.NewRedis(&initiative.RedisConfig{Client: client}).List(ctx)
	if err != nil {
		log.Fatalf("Failed to list saves: %v", err)
	}

	fmt.Printf("Found %d saves:\n", len(saves))
	for _, s := range saves {
		fmt.Printf("  %s  %s  round %d, %s's turn\n",
			s.Timestamp.Format("2006-01-02 15:04"), s.Name, s.RoundNumber, s.Current())
		fmt.Printf("    order: %s\n", strings.Join(s.Order, ", "))
		if s.Description != "" {
			fmt.Printf("    %s\n", s.Description)
		}
	}

	// Also show the stored characters
	chars, err := characters.NewRedis(client, effects.NewRegistry(nil)).List(ctx)
	if err != nil {
		log.Fatalf("Failed to list characters: %v", err)
	}

	fmt.Printf("\nFound %d characters:\n", len(chars))
	for _, c := range chars {
		fmt.Printf("  %s: HP %d/%d, %d effects\n", c.Name, c.Resources.CurrentHP, c.Resources.MaxHP, len(c.Effects))
	}
}
