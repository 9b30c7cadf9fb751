package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based cache for transformed CSS, keyed by a content hash so
// repeated passes over unchanged stylesheets skip re-minification. Entries
// expire after the TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// key hashes the CSS content into a filename. Two stylesheets with identical
// text share one cache entry regardless of their URLs.
func (c *Cache) key(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}

// Get retrieves the transformed output for the given CSS content.
// It returns the data and true if the entry is present and not expired.
func (c *Cache) Get(content string) ([]byte, bool) {
	filePath := filepath.Join(c.path, c.key(content))

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, false // Cache miss
	}

	if time.Since(info.ModTime()) > c.ttl {
		return nil, false // Cache miss (expired)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false // Cache miss (read error)
	}

	return data, true // Cache hit
}

// Set stores the transformed output for the given CSS content.
func (c *Cache) Set(content string, data []byte) error {
	filePath := filepath.Join(c.path, c.key(content))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
