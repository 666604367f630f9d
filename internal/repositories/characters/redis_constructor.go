package characters

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis creates a new Redis-backed character repository
func NewRedis(client redis.UniversalClient, codec EffectCodec) Repository {
	return NewRedisRepository(&RedisRepoConfig{
		Client: client,
		Codec:  codec,
	})
}
