package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratecat/pkg/cache"
	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/io"
	"github.com/matzehuels/cratecat/pkg/observability"
)

const keyTypeCatalog = "catalog"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close releases the underlying cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Collect turns a raw metadata document into a catalog, consulting the cache
// first unless opts.Refresh is set. Cache failures are logged and otherwise
// ignored.
func (r *Runner) Collect(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{DocumentHash: cache.Hash(raw)}
	result.CacheKey = r.Keyer.CatalogKey(result.DocumentHash, opts.keyOpts())

	if !opts.Refresh {
		if catalog, ok := r.lookup(ctx, result.CacheKey); ok {
			result.Catalog = catalog
			result.CacheHit = true
			result.Stats.Dependencies = len(catalog)
			r.Logger.Info("catalog cache hit",
				"document", short(result.DocumentHash),
				"dependencies", len(catalog))
			return result, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 1: Parse
	hooks := observability.Collect()
	parseStart := time.Now()
	hooks.OnParseStart(ctx, opts.format.Name)
	doc, err := opts.format.Decode(bytes.NewReader(raw))
	result.Stats.ParseTime = time.Since(parseStart)
	hooks.OnParseComplete(ctx, opts.format.Name, doc.PackageCount(), doc.EdgeCount(), result.Stats.ParseTime, err)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Stats.Packages = doc.PackageCount()
	result.Stats.Edges = doc.EdgeCount()

	r.Logger.Debug("decoded metadata",
		"format", opts.format.Name,
		"packages", result.Stats.Packages,
		"edges", result.Stats.Edges,
		"duration", result.Stats.ParseTime)

	// Stage 2: Collect
	collectStart := time.Now()
	hooks.OnCollectStart(ctx, result.Stats.Edges)
	catalog, err := deps.Collect(doc, deps.Options{
		Kinds:            opts.Kinds,
		IncludeWorkspace: opts.IncludeWorkspace,
		Logger:           r.Logger.Debugf,
	})
	result.Stats.CollectTime = time.Since(collectStart)
	hooks.OnCollectComplete(ctx, len(catalog), result.Stats.CollectTime, err)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	result.Catalog = catalog
	result.Stats.Dependencies = len(catalog)

	r.Logger.Info("collected catalog",
		"document", short(result.DocumentHash),
		"dependencies", len(catalog),
		"duration", result.Stats.ParseTime+result.Stats.CollectTime)

	// Stage 3: Store
	r.store(ctx, result.CacheKey, catalog, opts.CacheTTL)
	return result, nil
}

func (r *Runner) lookup(ctx context.Context, key string) ([]*deps.Dependency, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeCatalog)
		return nil, false
	}
	catalog, err := io.ReadJSON(bytes.NewReader(data))
	if err != nil {
		// Undecodable entries are recomputed and overwritten.
		r.Logger.Warn("discarding corrupt cache entry", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, keyTypeCatalog)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeCatalog)
	return catalog, true
}

func (r *Runner) store(ctx context.Context, key string, catalog []*deps.Dependency, ttl time.Duration) {
	var buf bytes.Buffer
	if err := io.WriteJSON(catalog, &buf); err != nil {
		r.Logger.Warn("encode catalog for cache", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), ttl); err != nil {
		r.Logger.Warn("cache store failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeCatalog, buf.Len())
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
