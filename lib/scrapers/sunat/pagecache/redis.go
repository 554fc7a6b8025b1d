package pagecache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const RedisKeyPrefix = "sunat:page:"

// RedisStore is a Store backed by redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, RedisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, RedisKeyPrefix+key, value, ttl).Err()
}
