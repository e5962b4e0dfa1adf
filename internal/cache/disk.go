package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists verification results across runs, so re-verifying
// an unchanged corpus is free. Writes go through a temp file and
// rename: batch workers may store results for different scores
// concurrently, and a reader must never see a half-written entry.
type DiskCache struct {
	dir string
	ttl time.Duration
}

func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl}
}

// diskEntry is the on-disk envelope around the cached result bytes.
type diskEntry struct {
	Version int       `json:"version"`
	Expires time.Time `json:"expires"`
	Result  []byte    `json:"result"`
}

const diskEntryVersion = 1

func (c *DiskCache) Get(key string) ([]byte, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Version != diskEntryVersion {
		_ = os.Remove(c.path(key))
		return nil, false
	}
	if time.Now().After(entry.Expires) {
		_ = os.Remove(c.path(key))
		return nil, false
	}
	return entry.Result, true
}

func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	raw, err := json.Marshal(diskEntry{
		Version: diskEntryVersion,
		Expires: time.Now().Add(ttl),
		Result:  value,
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "entry-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}

func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.path(key))
}

func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
