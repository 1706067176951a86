// Package cache stores encoded dependency catalogs.
//
// Collecting a catalog is cheap compared to running cargo, but the HTTP
// service sees the same lockfile-derived documents again and again. Caches
// hold the JSON encoding of a catalog under a key derived from the document
// hash and the collection options (see [Keyer]).
//
// Backends:
//
//   - [NullCache]: stores nothing
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MemoryCache]: in-process LRU with expiry
//   - [RedisCache]: shared cache for service replicas
//
// A cache is an optimization. Callers treat every cache error as a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry
	// is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
