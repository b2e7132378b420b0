package kvcache

import (
	"context"
	"time"

	"aave_alarm/internal/app/port"

	"github.com/patrickmn/go-cache"
)

// memoryCache keeps values in process memory.
type memoryCache struct {
	store *cache.Cache
}

// NewMemoryCache returns a go-cache backed store. A zero ttl keeps entries forever.
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) port.KeyValueCache {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &memoryCache{store: cache.New(ttl, cleanupInterval)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	v, found := c.store.Get(key)
	if !found {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value string) error {
	c.store.SetDefault(key, value)
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}
