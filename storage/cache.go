package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Athena-GenAI/api-testing/models"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores the aggregate payload as one JSON blob per key. Writes
// always replace the whole entry; there is no partial update path.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis using REDIS_HOST / REDIS_PORT /
// REDIS_PASSWORD, defaulting to localhost.
func NewRedisCache() (*RedisCache, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")

	rdb := redis.NewClient(&redis.Options{
		Addr:       fmt.Sprintf("%s:%s", host, port),
		Password:   password,
		DB:         0,
		MaxRetries: 3,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &RedisCache{client: rdb}, nil
}

// Read fetches and decodes a cache entry. Misses and corrupt entries both
// come back as (nil, nil) so the caller falls through to recompute.
func (c *RedisCache) Read(ctx context.Context, key string) (*models.CacheEntry, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", key, err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Printf("[cache] corrupt entry at %s, treating as miss: %v", key, err)
		return nil, nil
	}
	return &entry, nil
}

// Write replaces the entry at key atomically. A zero ttl stores the entry
// without expiry.
func (c *RedisCache) Write(ctx context.Context, key string, entry models.CacheEntry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: marshal entry: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Clear removes the entry at key.
func (c *RedisCache) Clear(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: del %s: %w", key, err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
