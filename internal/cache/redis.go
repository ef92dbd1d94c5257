// Package cache provides the caching layer for the Promogate system.
// It abstracts the interaction with the Redis L2 cache, handling
// key namespacing and connection management.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix is the namespace used for all setting keys in Redis.
// Example: "setting:DiscountRequirement.HasOneProduct-42"
const KeyPrefix = "setting"

// ErrNotFound is returned by GetSetting when the key is absent from the cache.
var ErrNotFound = errors.New("cache: key not found")

// Service defines the interface for cache operations.
// This interface allows for dependency injection and mocking in tests.
type Service interface {
	// GetSetting returns the cached value for a setting name,
	// or ErrNotFound when the key is absent.
	GetSetting(ctx context.Context, name string) (string, error)

	// SetSetting stores the value for a setting name with no expiration.
	// The syncer refreshes entries periodically, so staleness is bounded
	// by the sync interval rather than a TTL.
	SetSetting(ctx context.Context, name, value string) error

	// DeleteSetting removes a setting from the cache.
	DeleteSetting(ctx context.Context, name string) error

	// HealthCheck pings the redis server to ensure connectivity.
	HealthCheck(ctx context.Context) error

	// Close terminates the connection.
	Close() error
}

// RedisCache implements Service using the go-redis library.
type RedisCache struct {
	client *redis.Client
}

// Compile-time interface check.
var _ Service = (*RedisCache)(nil)

// NewRedisCache wraps an initialized Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	if client == nil {
		panic("cache: redis client cannot be nil")
	}
	return &RedisCache{client: client}
}

// GetSetting fetches a setting value from Redis (GET).
func (c *RedisCache) GetSetting(ctx context.Context, name string) (string, error) {
	value, err := c.client.Get(ctx, settingKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get setting %q from cache: %w", name, err)
	}
	return value, nil
}

// SetSetting stores a setting value in Redis (SET, no expiration).
func (c *RedisCache) SetSetting(ctx context.Context, name, value string) error {
	if err := c.client.Set(ctx, settingKey(name), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set setting %q in cache: %w", name, err)
	}
	return nil
}

// DeleteSetting removes a setting value from Redis (DEL).
func (c *RedisCache) DeleteSetting(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, settingKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete setting %q from cache: %w", name, err)
	}
	return nil
}

// HealthCheck verifies the connection to the Redis server.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func settingKey(name string) string {
	return fmt.Sprintf("%s:%s", KeyPrefix, name)
}
