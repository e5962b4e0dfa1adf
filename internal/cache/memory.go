package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps recent verification results in memory. Keys are
// content fingerprints, so an entry never goes stale; the TTL only
// bounds memory growth between cleanup sweeps.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns a copy of the cached result bytes. Callers decode in
// place, so the stored slice must not escape.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	stored := val.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true
}

func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.store.Set(key, stored, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.store.Flush()
	return nil
}

// Len reports the number of live entries, expired included until the
// next cleanup sweep.
func (c *MemoryCache) Len() int {
	return c.store.ItemCount()
}
