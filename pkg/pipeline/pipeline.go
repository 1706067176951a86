// Package pipeline runs the decode → collect → encode pipeline for cratecat.
//
// The CLI and the HTTP service both go through a [Runner], so caching,
// hooks and logging behave the same at every entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Collect(ctx, raw, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	out, err := pipeline.Render(ctx, result.Catalog, pipeline.FormatTable, pipeline.RenderOptions{})
//
// Raw documents are hashed with SHA-256; the hash and the collection options
// form the cache key, so an unchanged Cargo.lock never pays for collection
// twice.
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/cratecat/pkg/cache"
	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/deps/rust"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultInputFormat is the metadata format assumed when none is given.
const DefaultInputFormat = "cargo"

// InputFormats lists the metadata formats the pipeline can decode.
var InputFormats = []*deps.Format{rust.Format}

// Output format constants.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatTable: true,
	FormatJSON:  true,
	FormatYAML:  true,
	FormatDOT:   true,
	FormatSVG:   true,
}

// ValidateFormat checks that format is a supported output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		names := make([]string, 0, len(ValidFormats))
		for f := range ValidFormats {
			names = append(names, f)
		}
		slices.Sort(names)
		return fmt.Errorf("invalid format %q: must be one of %s", format, strings.Join(names, ", "))
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one collection.
type Options struct {
	InputFormat      string                // Metadata format name (default: cargo)
	Kinds            []deps.DependencyKind // Kinds to collect (default: all)
	IncludeWorkspace bool                  // Keep workspace members other members depend on
	Refresh          bool                  // Skip the cache lookup, still store the result
	CacheTTL         time.Duration         // Lifetime of the cached catalog (default: cache.DefaultTTL)

	format *deps.Format
}

// ValidateAndSetDefaults fills in defaults and resolves the input format.
func (o *Options) ValidateAndSetDefaults() error {
	if o.InputFormat == "" {
		o.InputFormat = DefaultInputFormat
	}
	f, err := deps.LookupFormat(InputFormats, o.InputFormat)
	if err != nil {
		return err
	}
	o.format = f
	if len(o.Kinds) == 0 {
		o.Kinds = slices.Clone(deps.AllKinds)
	}
	for _, k := range o.Kinds {
		if !slices.Contains(deps.AllKinds, k) {
			return fmt.Errorf("invalid dependency kind %d", int(k))
		}
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = cache.DefaultTTL
	}
	return nil
}

// keyOpts returns the cache key options of o.
func (o *Options) keyOpts() cache.CatalogKeyOpts {
	kinds := make([]string, len(o.Kinds))
	for i, k := range o.Kinds {
		kinds[i] = k.String()
	}
	return cache.CatalogKeyOpts{Kinds: kinds, IncludeWorkspace: o.IncludeWorkspace}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Catalog is the collected catalog, sorted by key.
	Catalog []*deps.Dependency

	// DocumentHash is the SHA-256 of the raw metadata document.
	DocumentHash string

	// CacheKey is the key the catalog is cached under.
	CacheKey string

	// CacheHit reports whether the catalog came from the cache.
	CacheHit bool

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics. Packages and Edges are zero
// on a cache hit, since the document is not decoded.
type Stats struct {
	Packages     int
	Edges        int
	Dependencies int
	ParseTime    time.Duration
	CollectTime  time.Duration
}
