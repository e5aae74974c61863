package toolcall

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const hallucinationCacheTTL = 5 * time.Minute

// HallucinationCache is a short-TTL dedup cache for resolved
// check_hallucination results: a degrading conversation can repeat the same
// directive across several turns, and the registry lookup it triggers is
// worth skipping on a cache hit rather than re-evaluating every time.
type HallucinationCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// RedisHallucinationCache backs HallucinationCache with Redis, matching the
// registry's own snapshot-mirror client so the process needs only one Redis
// connection pool.
type RedisHallucinationCache struct {
	client *redis.Client
}

// NewRedisHallucinationCache builds a RedisHallucinationCache. Returns nil
// if client is nil, letting callers wire it optionally with no nil-check at
// the call site.
func NewRedisHallucinationCache(client *redis.Client) *RedisHallucinationCache {
	if client == nil {
		return nil
	}
	return &RedisHallucinationCache{client: client}
}

func (c *RedisHallucinationCache) key(raw string) string {
	return "toolcall:check_hallucination:" + raw
}

// Get returns the cached result for key, if present and unexpired. Any
// Redis error is treated as a miss: this cache is an optimization, never a
// source of truth.
func (c *RedisHallucinationCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	value, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores value for key with the cache's fixed TTL. Failures are
// swallowed for the same reason Get treats them as misses.
func (c *RedisHallucinationCache) Set(ctx context.Context, key, value string) {
	if c == nil {
		return
	}
	c.client.Set(ctx, c.key(key), value, hallucinationCacheTTL)
}
