package rediscache

// Package rediscache implements the ContentCache port on Redis. The
// gateway uses it as a read-through cache for catalog and blog content
// so anonymous browsing does not hammer the backend.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumenshop/storefront/internal/ports"
)

// Cache is a byte-blob cache over a Redis client.
type Cache struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.ContentCache = (*Cache)(nil)

// New creates a cache with the given key prefix (defaults to "content:").
func New(client redis.UniversalClient, prefix string) *Cache {
	if prefix == "" {
		prefix = "content:"
	}
	return &Cache{client: client, prefix: prefix}
}

// Get retrieves a value by key. A missing key returns nil with no error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}

	result, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return []byte(result), nil
}

// Set stores a value with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete removes a key, reporting whether it existed.
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("key cannot be empty")
	}

	result, err := c.client.Del(ctx, c.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return result > 0, nil
}
