package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a SeenStore shared between hosts through Redis keys with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "seen"
	}
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) IsSeen(ctx context.Context, url string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(url)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Add(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	now := time.Now().Unix()
	for _, u := range urls {
		pipe.Set(ctx, s.key(u), now, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

func (s *RedisStore) key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s:%s", s.prefix, hex.EncodeToString(sum[:16]))
}
