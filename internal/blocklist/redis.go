package blocklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "jti:"

// RedisBlocklist stores revoked jti values as redis keys with expiry.
// Redis removes entries itself when the TTL passes.
type RedisBlocklist struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisBlocklist {
	return &RedisBlocklist{client: client}
}

func (b *RedisBlocklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	err := b.client.Set(ctx, keyPrefix+jti, "revoked", ttl).Err()
	if err != nil {
		return fmt.Errorf("blocklist set error: %w", err)
	}

	return nil
}

func (b *RedisBlocklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("blocklist get error: %w", err)
	}

	return n > 0, nil
}
