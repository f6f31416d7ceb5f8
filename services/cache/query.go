// Package cache is the Redis-backed read cache in front of the booking
// backend. Reads are cached per query key for a short stale time, identical
// concurrent reads share one backend call, and mutations drop a whole scope
// at once.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotbook/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QueryCache caches backend reads in Redis.
type QueryCache struct {
	client *redis.Client
	group  singleflight.Group
}

// NewQueryCache wraps client.
func NewQueryCache(client *redis.Client) *QueryCache {
	return &QueryCache{client: client}
}

// Client exposes the underlying Redis client.
func (c *QueryCache) Client() *redis.Client { return c.client }

// Fetch returns the cached value of key or calls load, caching a successful
// result for ttl. A non-positive ttl disables storing. Failed loads are never
// cached. Redis errors degrade to a direct load. A load that races with an
// invalidation of its scope is returned but not stored.
func Fetch[T any](ctx context.Context, c *QueryCache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := lookup[T](ctx, c, key); ok {
		return v, nil
	}

	// Reads that start after an invalidation never join a flight that
	// started before it.
	gen := c.Generation(ctx, scopeOf(key))
	res, err, _ := c.group.Do(fmt.Sprintf("%s@%d", key, gen), func() (interface{}, error) {
		// The shared load outlives any single caller.
		loadCtx := context.WithoutCancel(ctx)
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if ttl > 0 && c.Generation(loadCtx, scopeOf(key)) == gen {
			c.store(loadCtx, key, v, ttl)
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected value type %T for %s", res, key)
	}
	return v, nil
}

func lookup[T any](ctx context.Context, c *QueryCache, key string) (T, bool) {
	var v T
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.GetLogger().Warn("Query cache read failed", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		utils.GetLogger().Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return v, false
	}
	return v, true
}

func (c *QueryCache) store(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := c.Set(ctx, key, v, ttl); err != nil {
		utils.GetLogger().Warn("Query cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Set stores v under key for ttl, replacing any cached value.
func (c *QueryCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete drops individual keys.
func (c *QueryCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// InvalidateScope drops every cached read under scope and bumps the scope's
// generation so derived data keyed on it is rebuilt.
func (c *QueryCache) InvalidateScope(ctx context.Context, scope string) error {
	if _, err := c.client.Incr(ctx, generationKey(scope)).Result(); err != nil {
		return fmt.Errorf("bump %s generation: %w", scope, err)
	}
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, scope+":*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan %s keys: %w", scope, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete %s keys: %w", scope, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Generation is the number of times scope has been invalidated. It reads 0
// when unknown or when Redis is unreachable.
func (c *QueryCache) Generation(ctx context.Context, scope string) int64 {
	n, err := c.client.Get(ctx, generationKey(scope)).Int64()
	if err != nil {
		return 0
	}
	return n
}
