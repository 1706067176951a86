package cache

import (
	"context"
	"time"
)

// NullCache never stores a catalog, so every run re-parses its metadata
// document. It backs --no-cache and `backend = "none"`, and stands in for a
// configured backend that could not be opened.
type NullCache struct{}

// NewNullCache returns the cache used when catalog caching is off.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always misses, so the runner collects the document afresh.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set drops the encoded catalog.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete has nothing to remove.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// Clear has nothing to remove.
func (c *NullCache) Clear(ctx context.Context) error {
	return nil
}

var (
	_ Cache   = (*NullCache)(nil)
	_ Clearer = (*NullCache)(nil)
)
