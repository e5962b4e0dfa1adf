package cache

import "time"

// LayeredCache combines the memory and disk layers: memory answers
// repeat lookups within a run, disk survives across runs.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a layered cache.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk, promoting disk hits.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}
	if val, found := c.disk.Get(key); found {
		c.memory.Set(key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores a value in both layers.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers.
func (c *LayeredCache) Delete(key string) error {
	memErr := c.memory.Delete(key)
	diskErr := c.disk.Delete(key)
	if memErr != nil {
		return memErr
	}
	return diskErr
}

// Clear empties both layers.
func (c *LayeredCache) Clear() error {
	memErr := c.memory.Clear()
	diskErr := c.disk.Clear()
	if memErr != nil {
		return memErr
	}
	return diskErr
}
