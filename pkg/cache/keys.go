package cache

import "slices"

// CatalogFormat versions the encoding stored under catalog keys. Bump it when
// the catalog encoding changes so stale entries are never decoded.
const CatalogFormat = 1

// Keyer builds cache keys.
type Keyer interface {
	// CatalogKey returns the key of the catalog collected from the document
	// with the given hash under opts.
	CatalogKey(documentHash string, opts CatalogKeyOpts) string
}

// CatalogKeyOpts holds the collection options that change a catalog.
type CatalogKeyOpts struct {
	Kinds            []string // Collected kind names; order does not matter
	IncludeWorkspace bool
}

// DefaultKeyer hashes key components into "catalog:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CatalogKey generates a key for catalog caching.
func (DefaultKeyer) CatalogKey(documentHash string, opts CatalogKeyOpts) string {
	kinds := slices.Clone(opts.Kinds)
	slices.Sort(kinds)
	kinds = slices.Compact(kinds)
	return hashKey("catalog", CatalogFormat, documentHash, kinds, opts.IncludeWorkspace)
}
