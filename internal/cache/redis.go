package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/foodshare/foodshare/pkg/config"
	"github.com/foodshare/foodshare/pkg/logging"
)

const keyPrefix = "foodshare:"

var (
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = errors.New("cache is disabled")
	// ErrMiss is returned by Get when the key is absent
	ErrMiss = errors.New("cache miss")
)

// Cache wraps Redis client. A nil *Cache is valid and behaves as disabled.
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client. It returns a nil cache when Redis is not configured.
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

func (c *Cache) namespaceKey(key string) string {
	return keyPrefix + key
}

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	val, err := c.client.Get(ctx, c.namespaceKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Set sets a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Set(ctx, c.namespaceKey(key), value, ttl).Err()
}

// Delete removes a key from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Del(ctx, c.namespaceKey(key)).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}
