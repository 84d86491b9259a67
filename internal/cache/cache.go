// Package cache stores extraction results on disk, keyed by the series they
// were fitted to and validated against the settings that produced them.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache provides file-based caching of growth extraction results.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry represents a cached result.
type Entry struct {
	Hash      string          `json:"hash"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New creates a new cache instance.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Key identifies the result of fitting one metric series of an instrument.
// fingerprint digests the series values.
func Key(ticker, metric string, fingerprint uint64) string {
	return fmt.Sprintf("%s|%s|%016x", ticker, metric, fingerprint)
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashValue computes a BLAKE3 hash of the JSON encoding of v.
func HashValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// Load decodes the entry for key into out when it exists, was stored with
// hash and has not expired.
func (c *Cache) Load(key, hash string, out any) bool {
	if !c.enabled {
		return false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false
	}

	if entry.Hash != hash {
		return false
	}

	if time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return false
	}

	return json.Unmarshal(entry.Data, out) == nil
}

// Store encodes v as the entry for key, tagged with hash.
func (c *Cache) Store(key, hash string, v any) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	entryData, err := json.Marshal(Entry{
		Hash:      hash,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), entryData, 0600)
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a key to a filesystem path.
func (c *Cache) keyPath(key string) string {
	hash := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
