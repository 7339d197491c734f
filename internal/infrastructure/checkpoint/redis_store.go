package checkpoint

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists checkpoints as Unix timestamps. Values never expire;
// the importer owns their lifecycle.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get checkpoint %s: %w", key, err)
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse checkpoint %s value %q: %w", key, raw, err)
	}
	return time.Unix(unix, 0).UTC(), true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, at time.Time) error {
	if err := s.client.Set(ctx, key, strconv.FormatInt(at.Unix(), 10), 0).Err(); err != nil {
		return fmt.Errorf("set checkpoint %s: %w", key, err)
	}
	return nil
}
