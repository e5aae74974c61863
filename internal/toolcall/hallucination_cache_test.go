package toolcall

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisHallucinationCache_MissThenSetThenHit(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisHallucinationCache(client)

	ctx := context.Background()

	_, ok := cache.Get(ctx, "US|website|crisistextline.org")
	require.False(t, ok)

	cache.Set(ctx, "US|website|crisistextline.org", "crisistextline.org is a verified resource.")

	value, ok := cache.Get(ctx, "US|website|crisistextline.org")
	require.True(t, ok)
	require.Equal(t, "crisistextline.org is a verified resource.", value)
}

func TestRedisHallucinationCache_NilClientIsSafe(t *testing.T) {
	cache := NewRedisHallucinationCache(nil)
	require.Nil(t, cache)

	ctx := context.Background()
	_, ok := cache.Get(ctx, "anything")
	require.False(t, ok)

	cache.Set(ctx, "anything", "value")
}
