package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "shop:catalog:"

// RedisProductCache stores category listings as JSON in Redis so that
// every instance shares them
type RedisProductCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisProductCache creates a Redis-backed listing cache on an existing client
func NewRedisProductCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisProductCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisProductCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (c *RedisProductCache) key(category string) string {
	return c.keyPrefix + category
}

// Get returns the cached listing of category. A missing key is a miss, not an error.
func (c *RedisProductCache) Get(ctx context.Context, category string) ([]catalog.Product, bool, error) {
	data, err := c.client.Get(ctx, c.key(category)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read catalog cache: %w", err)
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		// Drop the entry so the next read refills it
		_ = c.client.Del(ctx, c.key(category)).Err()
		return nil, false, fmt.Errorf("failed to decode catalog cache entry: %w", err)
	}
	return products, true, nil
}

// Set stores the listing of category for the configured TTL
func (c *RedisProductCache) Set(ctx context.Context, category string, products []catalog.Product) error {
	if products == nil {
		products = []catalog.Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode catalog cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.key(category), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

// Delete drops the listings of the given categories
func (c *RedisProductCache) Delete(ctx context.Context, categories ...string) error {
	if len(categories) == 0 {
		return nil
	}
	keys := make([]string, len(categories))
	for i, category := range categories {
		keys[i] = c.key(category)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete catalog cache entries: %w", err)
	}
	return nil
}
