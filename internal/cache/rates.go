package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ratesKeyPrefix = "rates:"

	// DefaultResponseTTL bounds how long a cached response may live even
	// though the snapshot ID in the key already invalidates on refresh.
	DefaultResponseTTL = 5 * time.Minute
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// ResponseKey builds the cache key for a rates response. The dataset
// snapshot ID is part of the key, so a refresh invalidates every cached
// response without explicit deletes.
func ResponseKey(snapshotID, date, from string, to []string) string {
	return fmt.Sprintf("%s%s|%s|%s|%s", ratesKeyPrefix, snapshotID, date, from, strings.Join(to, ","))
}

// GetResponse retrieves a cached serialized response.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetResponse(ctx context.Context, key string) ([]byte, error) {
	body, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return body, nil
}

// SetResponse stores a serialized response with the given TTL.
func (c *Cache) SetResponse(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	if err := c.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}
