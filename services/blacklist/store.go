package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a TTL-expiring presence set of revoked access tokens. Entries
// disappear on their own at TTL expiry; there is no explicit delete.
type Store interface {
	Add(ctx context.Context, tokenValue string, ttl time.Duration) error
	Contains(ctx context.Context, tokenValue string) (bool, error)
}

const redisKeyPrefix = "tokenauth:blacklist:"

// RedisStore shares blacklist state across every gateway instance. TTL
// handling is delegated to Redis key expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Add(ctx context.Context, tokenValue string, ttl time.Duration) error {
	if err := r.client.Set(ctx, redisKeyPrefix+tokenValue, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *RedisStore) Contains(ctx context.Context, tokenValue string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKeyPrefix+tokenValue).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return n > 0, nil
}
