package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Cache wraps a Slot with a Redis read-through cache. Writes go to the base
// slot first and then evict the cached copy.
type Cache struct {
	base   Slot
	redis  *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewCache creates a caching wrapper around base using the provided Redis
// client and TTL. A nil client or zero TTL disables caching.
func NewCache(base Slot, client *redis.Client, ttl time.Duration, logger *log.Logger) *Cache {
	if base == nil {
		panic("storage.NewCache: base slot is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Cache{base: base, redis: client, ttl: ttl, logger: logger}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := c.load(ctx, key); ok {
		return data, nil
	}
	data, err := c.base.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, data)
	return data, nil
}

func (c *Cache) Put(ctx context.Context, key string, data []byte) error {
	if err := c.base.Put(ctx, key, data); err != nil {
		return err
	}
	c.evict(ctx, key)
	return nil
}

func (c *Cache) load(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the base slot without failing.
			c.logger.WithError(err).WithField("key", key).Debug("slot cache read failed")
			_ = c.redis.Del(ctx, cacheKey(key)).Err()
		}
		return nil, false
	}
	return data, true
}

func (c *Cache) store(ctx context.Context, key string, data []byte) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	if err := c.redis.Set(ctx, cacheKey(key), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Debug("slot cache write failed")
	}
}

func (c *Cache) evict(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, cacheKey(key)).Result()
}

func cacheKey(key string) string {
	return "slot:" + key
}
