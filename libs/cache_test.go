package libs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestCache_NilIsSafe(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*Cache{nil, NewCache(nil)} {
		c.Set(ctx, "k", "v", time.Minute)
		_, ok := c.Get(ctx, "k")
		assert.False(t, ok)
		c.InvalidatePrefix(ctx, "k")
	}
}

func TestCache_InvalidatePrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	cache.Set(ctx, "products_list_p1_l12", "a", time.Minute)
	cache.Set(ctx, "products_list_p2_l12", "b", time.Minute)
	cache.Set(ctx, "other", "c", time.Minute)

	val, ok := cache.Get(ctx, "products_list_p1_l12")
	assert.True(t, ok)
	assert.Equal(t, "a", val)

	cache.InvalidatePrefix(ctx, "products_list_")

	assert.False(t, mr.Exists("products_list_p1_l12"))
	assert.False(t, mr.Exists("products_list_p2_l12"))
	assert.True(t, mr.Exists("other"))
}

func TestCache_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	cache.Set(ctx, "products_list_p1_l12", "a", time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, "products_list_p1_l12")
	assert.False(t, ok)
}
