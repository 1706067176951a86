package cache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by [New].
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Backends lists every backend name.
var Backends = []string{BackendNone, BackendFile, BackendMemory, BackendRedis}

// Defaults.
const (
	DefaultTTL           = 24 * time.Hour
	DefaultMemoryEntries = 256
	DefaultNamespace     = "cratecat:"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend       string        // One of Backends (default: none)
	Dir           string        // FileCache directory
	RedisURL      string        // RedisCache server URL
	Namespace     string        // RedisCache key namespace (default: DefaultNamespace)
	MemoryEntries int           // MemoryCache capacity (default: DefaultMemoryEntries)
	TTL           time.Duration // Upper bound on MemoryCache entry lifetime
}

// New opens the cache described by opts.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMemory:
		return NewMemoryCache(opts.MemoryEntries, opts.TTL), nil
	case BackendRedis:
		ns := opts.Namespace
		if ns == "" {
			ns = DefaultNamespace
		}
		c, err := NewRedisCache(ctx, opts.RedisURL, ns)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (available: %v)", opts.Backend, Backends)
	}
}
