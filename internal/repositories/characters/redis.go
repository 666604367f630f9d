package characters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
)

const charactersIndexKey = "characters"

// Data represents the serialized form of a character in Redis. Effects
// are stored next to the sheet in their registry form.
type Data struct {
	Character *character.Character `json:"character"`
	Effects   []json.RawMessage    `json:"effects,omitempty"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	Codec  EffectCodec
	Now    func() time.Time
}

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
	codec  EffectCodec
	now    func() time.Time
}

// NewRedisRepository creates a new Redis-backed character repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}
	if cfg.Codec == nil {
		panic("effect codec cannot be nil")
	}

	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &redisRepo{
		client: cfg.Client,
		codec:  cfg.Codec,
		now:    now,
	}
}

// key generates the Redis key for a character
func (r *redisRepo) key(name string) string {
	return fmt.Sprintf("character:%s", Key(name))
}

func (r *redisRepo) toData(c *character.Character) (*Data, error) {
	docs, err := r.codec.EncodeAll(c.Effects)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to encode effects of %s", c.Name)
	}
	return &Data{
		Character: c,
		Effects:   docs,
		UpdatedAt: r.now(),
	}, nil
}

func (r *redisRepo) fromData(data *Data) (*character.Character, error) {
	if data.Character == nil {
		return nil, dnderr.Internal("character document is empty")
	}
	list, err := r.codec.DecodeAll(data.Effects)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to decode effects of %s", data.Character.Name)
	}
	data.Character.Effects = list
	return data.Character, nil
}

// Create stores a new character
func (r *redisRepo) Create(ctx context.Context, c *character.Character) error {
	if err := validate(c); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(c.Name)).Result()
	if err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to check character existence")
	}
	if exists > 0 {
		return dnderr.AlreadyExistsf("character '%s' already exists", c.Name).
			WithMeta("character", c.Name)
	}

	return r.Save(ctx, c)
}

// Get retrieves a character by name
func (r *redisRepo) Get(ctx context.Context, name string) (*character.Character, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dnderr.InvalidArgument("character name is required")
	}

	raw, err := r.client.Get(ctx, r.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dnderr.NotFoundf("character '%s' not found", name).
				WithMeta("character", name)
		}
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to get character").
			WithMeta("character", name)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, dnderr.Wrapf(err, "failed to unmarshal character %s", name)
	}
	return r.fromData(&data)
}

// Save writes the character and its effects, creating it when missing
func (r *redisRepo) Save(ctx context.Context, c *character.Character) error {
	if err := validate(c); err != nil {
		return err
	}

	data, err := r.toData(c)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return dnderr.Wrapf(err, "failed to marshal character %s", c.Name)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(c.Name), string(raw), 0)
	pipe.SAdd(ctx, charactersIndexKey, Key(c.Name))
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to save character").
			WithMeta("character", c.Name)
	}
	return nil
}

// List loads every indexed character in parallel
func (r *redisRepo) List(ctx context.Context) ([]*character.Character, error) {
	names, err := r.client.SMembers(ctx, charactersIndexKey).Result()
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to list characters")
	}

	loaded := make([]*character.Character, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			c, err := r.Get(gctx, name)
			if err != nil {
				if dnderr.IsNotFound(err) {
					return nil
				}
				return dnderr.Wrapf(err, "failed to get character %s", name)
			}
			loaded[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sortByName(loaded), nil
}

// Delete removes a character
func (r *redisRepo) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return dnderr.InvalidArgument("character name is required")
	}

	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, r.key(name))
	pipe.SRem(ctx, charactersIndexKey, Key(name))
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to delete character").
			WithMeta("character", name)
	}
	if del.Val() == 0 {
		return dnderr.NotFoundf("character '%s' not found", name).WithMeta("character", name)
	}
	return nil
}

func validate(c *character.Character) error {
	if c == nil {
		return dnderr.InvalidArgument("character cannot be nil")
	}
	if strings.TrimSpace(c.Name) == "" {
		return dnderr.InvalidArgument("character name is required")
	}
	return nil
}

func sortByName(list []*character.Character) []*character.Character {
	out := make([]*character.Character, 0, len(list))
	for _, c := range list {
		if c != nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return Key(out[i].Name) < Key(out[j].Name)
	})
	return out
}
