package board

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Cache is an on-disk store of previously fetched responses, keyed by URL.
// Entries never expire; stale data is preferable to re-downloading
// multi-megabyte images on every invocation.
type Cache struct {
	// Dir is the directory cache entries are stored in
	Dir string
}

// DefaultCache returns a cache rooted under the user's cache directory.
func DefaultCache() (*Cache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return &Cache{Dir: filepath.Join(base, "uf2tool", "requests")}, nil
}

// Get returns the cached response body for url, or ok=false on a miss.
func (c *Cache) Get(url string) ([]byte, bool) {
	data, err := os.ReadFile(c.entryPath(url))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores a response body for url.
func (c *Cache) Put(url string, data []byte) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(c.entryPath(url), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (c *Cache) entryPath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.Dir, hex.EncodeToString(sum[:]))
}
