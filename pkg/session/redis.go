package session

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash key RedisPersistence uses unless overridden.
const DefaultRedisKey = "shopclient:session"

// RedisPersistence stores the session record as a Redis hash, for
// deployments where the client runs in several short-lived processes that
// should share one login (kiosks, CI jobs driving the admin API).
type RedisPersistence struct {
	db  redis.UniversalClient
	key string
}

// NewRedisPersistence creates a Redis-backed persistence on client. An empty
// key falls back to DefaultRedisKey.
func NewRedisPersistence(client redis.UniversalClient, key string) *RedisPersistence {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisPersistence{db: client, key: key}
}

func (r *RedisPersistence) Save(ctx context.Context, entries map[string]string) error {
	fields := make(map[string]any, len(entries))
	for k, v := range entries {
		fields[k] = v
	}

	// DEL+HSET in one pipeline so a replaced record never keeps stale fields.
	pipe := r.db.TxPipeline()
	pipe.Del(ctx, r.key)
	if len(fields) > 0 {
		pipe.HSet(ctx, r.key, fields)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisPersistence) Load(ctx context.Context) (map[string]string, error) {
	entries, err := r.db.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *RedisPersistence) Clear(ctx context.Context) error {
	return r.db.Del(ctx, r.key).Err()
}
