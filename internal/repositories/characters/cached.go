package characters

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/logging"
	"github.com/KirkDiggler/initiative-bot/internal/metrics"
)

// CachedConfig configures a cached repository.
type CachedConfig struct {
	Next   Repository
	Size   int
	TTL    time.Duration
	Logger *slog.Logger
}

// Cached keeps recently used characters in an expiring LRU in front of
// another repository. Writes go through to the next repository first.
type Cached struct {
	next   Repository
	lru    *expirable.LRU[string, *character.Character]
	logger *slog.Logger
}

func NewCached(cfg *CachedConfig) (*Cached, error) {
	if cfg == nil || cfg.Next == nil {
		return nil, dnderr.InvalidArgument("cached repository needs a backing repository")
	}
	if cfg.Size <= 0 {
		return nil, dnderr.InvalidArgumentf("cache size must be positive, got %d", cfg.Size)
	}

	return &Cached{
		next:   cfg.Next,
		lru:    expirable.NewLRU[string, *character.Character](cfg.Size, nil, cfg.TTL),
		logger: logging.Component(cfg.Logger, "characters"),
	}, nil
}

func (c *Cached) Get(ctx context.Context, name string) (*character.Character, error) {
	if cached, ok := c.lru.Get(Key(name)); ok {
		metrics.CharacterCacheOps.WithLabelValues(metrics.ResultHit).Inc()
		return cached, nil
	}
	metrics.CharacterCacheOps.WithLabelValues(metrics.ResultMiss).Inc()

	loaded, err := c.next.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	c.lru.Add(Key(name), loaded)
	return loaded, nil
}

func (c *Cached) Save(ctx context.Context, ch *character.Character) error {
	if err := c.next.Save(ctx, ch); err != nil {
		// The cached copy may be ahead of the store now.
		c.invalidate(ctx, ch)
		return err
	}
	c.lru.Add(Key(ch.Name), ch)
	return nil
}

func (c *Cached) Create(ctx context.Context, ch *character.Character) error {
	if err := c.next.Create(ctx, ch); err != nil {
		return err
	}
	c.lru.Add(Key(ch.Name), ch)
	return nil
}

func (c *Cached) List(ctx context.Context) ([]*character.Character, error) {
	list, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, ch := range list {
		c.lru.Add(Key(ch.Name), ch)
	}
	return list, nil
}

func (c *Cached) Delete(ctx context.Context, name string) error {
	c.lru.Remove(Key(name))
	return c.next.Delete(ctx, name)
}

// Purge empties the cache.
func (c *Cached) Purge() {
	c.lru.Purge()
}

func (c *Cached) invalidate(ctx context.Context, ch *character.Character) {
	if ch == nil {
		return
	}
	c.lru.Remove(Key(ch.Name))
	logging.FromContext(ctx, c.logger).Warn("dropped cached character after failed save", "character", ch.Name)
}
