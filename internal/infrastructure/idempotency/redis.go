package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Reserve claims key; false means another request already holds it.
func (s *RedisStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "idem:"+key, "1", s.ttl).Result()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, "idem:"+key).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
