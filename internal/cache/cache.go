// Package cache provides a small disk cache for synthesized audio. Chunks
// of the same text, model and voice produce identical audio, so cached
// entries let a re-run with a wiped progress file skip the TTS backend.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Cache stores zstd-compressed audio blobs as content-addressed files
// under a single directory. Safe for concurrent use.
type Cache struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	mu      sync.Mutex
}

// Key derives the cache key for a synthesis request. Any part that
// changes the produced audio must be included.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// New creates (or reopens) a cache rooted at dir.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
	}

	return &Cache{dir: dir, encoder: encoder, decoder: decoder}, nil
}

// Get returns the cached blob for key, or false when absent or
// undecodable. Corrupt entries are removed so the next Put can replace
// them.
func (c *Cache) Get(key string) ([]byte, bool) {
	path := c.entryPath(key)

	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	c.mu.Lock()
	data, err := c.decoder.DecodeAll(compressed, nil)
	c.mu.Unlock()
	if err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	return data, true
}

// Put stores a blob under key, compressing it on the way in. The entry is
// written via a temp file so concurrent readers never see a partial blob.
func (c *Cache) Put(key string, data []byte) error {
	c.mu.Lock()
	compressed := c.encoder.EncodeAll(data, nil)
	c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("unable to create cache entry: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("unable to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("unable to close cache entry: %w", err)
	}
	if err := os.Rename(tmpPath, c.entryPath(key)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("unable to store cache entry: %w", err)
	}
	return nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".zst")
}
