package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache implements usecase.Cache using Redis. It backs the short-lived cash
// register snapshot served to polling screens.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a Cache on client. Keys are namespaced so they
// cannot collide with the idempotency store sharing the instance.
func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: "cache:",
	}
}

// Get returns the value stored under key. Misses surface as redis.Nil,
// which callers treat as a cold cache.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, c.prefix+key).Result()
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete drops key. Used to invalidate the snapshot after a mutation.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
