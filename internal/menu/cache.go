package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis helpers for JSON payloads. Keys embed a version counter
// that is bumped on every menu mutation, so stale entries stop being read
// immediately and expire by TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

const versionKey = "kiosk:menu:version"

// Key builds a versioned cache key for the given suffix.
func (c *Cache) Key(ctx context.Context, suffix string) string {
	if c == nil || c.client == nil {
		return ""
	}
	ver, err := c.client.Get(ctx, versionKey).Result()
	if err != nil {
		ver = "0"
	}
	return fmt.Sprintf("kiosk:menu:v%s:%s", ver, suffix)
}

// Bump invalidates all cached menu reads by advancing the version counter.
func (c *Cache) Bump(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Incr(ctx, versionKey)
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
