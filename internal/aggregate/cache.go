package aggregate

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a small redis-backed projection cache. It is deliberately
// fail-open: a nil receiver, a nil client or any redis error behaves like a
// cache miss, so losing redis only costs latency, never availability.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache wraps a redis client. rdb may be nil (caching disabled).
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get unmarshals the cached value for key into out and reports whether a
// usable entry was found.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("cache: corrupt entry for %s dropped: %v", key, err)
		return false
	}
	return true
}

// Set stores val under key for the configured TTL. Errors are logged and
// swallowed.
func (c *Cache) Set(ctx context.Context, key string, val any) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		log.Printf("cache: marshal %s failed: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}
