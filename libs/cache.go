package libs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin redis wrapper. A nil *Cache or one without a client is a
// valid cache that never hits.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.enabled() {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if !c.enabled() {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if !c.enabled() {
		return
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "prefix", prefix, "error", err)
	}
}
