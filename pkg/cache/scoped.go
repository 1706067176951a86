package cache

// ScopedKeyer wraps a Keyer with a prefix, so tenants or deployments sharing
// one Redis keep separate namespaces:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CatalogKey generates a prefixed key for catalog caching.
func (k *ScopedKeyer) CatalogKey(documentHash string, opts CatalogKeyOpts) string {
	return k.prefix + k.inner.CatalogKey(documentHash, opts)
}
