package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gapscout/internal/core"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisCache shares analysis results between processes through Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "gapscout:"
	}

	return &RedisCache{client: client, prefix: prefix}, nil
}

func (c *RedisCache) Backend() string { return "redis" }

func (c *RedisCache) redisKey(key Key) string {
	return c.prefix + "analysis:" + key.String()
}

// Get retrieves a cached result or ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key Key) (*core.AnalysisResult, error) {
	val, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var result core.AnalysisResult
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, fmt.Errorf("decode cached analysis: %w", err)
	}
	return &result, nil
}

// Put stores a result with TTL. A non-positive ttl never expires.
func (c *RedisCache) Put(ctx context.Context, key Key, result *core.AnalysisResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.redisKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Stats counts cached analyses under the prefix.
func (c *RedisCache) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{Backend: c.Backend()}

	iter := c.client.Scan(ctx, 0, c.prefix+"analysis:*", 100).Iterator()
	for iter.Next(ctx) {
		stats.AnalysisCount++
		val, err := c.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		stats.CacheSize += int64(len(val))

		var result core.AnalysisResult
		if json.Unmarshal(val, &result) == nil {
			stats.GapCount += len(result.Gaps)
			if result.GeneratedAt.After(stats.LastUpdated) {
				stats.LastUpdated = result.GeneratedAt
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return stats, nil
}

// Clear removes all cached analyses under the prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"analysis:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
