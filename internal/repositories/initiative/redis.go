package initiative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

const savesIndexKey = "initiative:saves"

// RedisConfig configures the redis repository.
type RedisConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
}

type redisRepo struct {
	client redis.UniversalClient
	clock  TimeProvider
}

// NewRedis creates a redis-backed save repository. Each save is a JSON
// document and the set of keys is kept in an index set.
func NewRedis(cfg *RedisConfig) Repository {
	if cfg == nil {
		panic("RedisConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	clock := cfg.TimeProvider
	if clock == nil {
		clock = utcClock{}
	}

	return &redisRepo{
		client: cfg.Client,
		clock:  clock,
	}
}

func saveKey(key string) string {
	return fmt.Sprintf("initiative:save:%s", key)
}

func (r *redisRepo) Save(ctx context.Context, s *Save) error {
	key, err := prepare(s, r.clock)
	if err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return dnderr.Wrapf(err, "failed to marshal save %s", s.Name)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, saveKey(key), string(data), 0)
	pipe.SAdd(ctx, savesIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to write save").
			WithMeta("save", s.Name)
	}
	return nil
}

func (r *redisRepo) get(ctx context.Context, key string) (*Save, error) {
	data, err := r.client.Get(ctx, saveKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dnderr.NotFoundf("save '%s' not found", key).WithMeta("save", key)
		}
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to read save").
			WithMeta("save", key)
	}

	var s Save
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, dnderr.Wrapf(err, "failed to unmarshal save %s", key)
	}
	return &s, nil
}

func (r *redisRepo) Load(ctx context.Context, name string) (*Save, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dnderr.InvalidArgument("save name is required")
	}

	s, err := r.get(ctx, Key(name))
	if err == nil || !dnderr.IsNotFound(err) {
		return s, err
	}

	all, listErr := r.List(ctx)
	if listErr != nil {
		return nil, listErr
	}
	for _, candidate := range all {
		if strings.EqualFold(candidate.Name, name) {
			return candidate, nil
		}
	}
	return nil, dnderr.NotFoundf("save '%s' not found", name).WithMeta("save", name)
}

func (r *redisRepo) List(ctx context.Context) ([]*Save, error) {
	keys, err := r.client.SMembers(ctx, savesIndexKey).Result()
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to list saves")
	}

	saves := make([]*Save, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			s, err := r.get(gctx, key)
			if err != nil {
				// Index entries can outlive their document.
				if dnderr.IsNotFound(err) {
					return nil
				}
				return err
			}
			saves[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sortNewest(saves), nil
}

func (r *redisRepo) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return dnderr.InvalidArgument("save name is required")
	}
	key := Key(name)

	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, saveKey(key))
	pipe.SRem(ctx, savesIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to delete save").
			WithMeta("save", name)
	}
	if del.Val() == 0 {
		return dnderr.NotFoundf("save '%s' not found", name).WithMeta("save", name)
	}
	return nil
}

// sortNewest drops nil entries and orders by timestamp, newest first.
func sortNewest(saves []*Save) []*Save {
	out := make([]*Save, 0, len(saves))
	for _, s := range saves {
		if s != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
