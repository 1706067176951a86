package deps

import (
	"slices"

	"github.com/matzehuels/cratecat/pkg/crates"
	"github.com/matzehuels/cratecat/pkg/errors"
)

// Collect folds the resolution graph of doc into a catalog with one
// [Dependency] per (package name, epoch) that is the target of at least one
// edge. Edges from different requesters onto compatible versions of a
// package collapse into the same entry; their features are unioned per kind.
//
// The result is sorted by [Key.Compare]. Collect returns an error with code
// MALFORMED_VERSION when a required package has an invalid version,
// CONFLICTING_VERSIONS when two distinct packages share a catalog key, and
// INVALID_METADATA when an edge references an unknown package. On error no
// catalog is returned. An empty document yields an empty catalog.
func Collect(doc *Document, opts Options) ([]*Dependency, error) {
	opts = opts.WithDefaults()
	if doc == nil || len(doc.Edges) == 0 {
		return []*Dependency{}, nil
	}

	c, err := newCollector(doc, opts)
	if err != nil {
		return nil, err
	}
	if err := c.group(); err != nil {
		return nil, err
	}
	c.link()
	return c.emit(), nil
}

type contribution struct {
	features  FeatureSet
	platforms PlatformSet
}

type entry struct {
	pkg   *PackageRecord
	kinds map[DependencyKind][]contribution
	deps  map[DependencyKind]map[Key]bool
}

type collector struct {
	doc       *Document
	opts      Options
	packages  map[string]*PackageRecord
	workspace map[string]bool
	keys      map[string]Key // package ID -> key, for packages in the catalog
	entries   map[Key]*entry
}

func newCollector(doc *Document, opts Options) (*collector, error) {
	c := &collector{
		doc:       doc,
		opts:      opts,
		packages:  make(map[string]*PackageRecord, len(doc.Packages)),
		workspace: make(map[string]bool, len(doc.WorkspaceMembers)),
		keys:      make(map[string]Key),
		entries:   make(map[Key]*entry),
	}
	for i := range doc.Packages {
		p := &doc.Packages[i]
		if _, dup := c.packages[p.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidMetadata, "duplicate package ID %q", p.ID)
		}
		c.packages[p.ID] = p
	}
	for _, id := range doc.WorkspaceMembers {
		c.workspace[id] = true
	}
	return c, nil
}

// annotations returns the kind annotations of e that survive kind filtering.
func (c *collector) annotations(e *ResolutionEdge) []KindAnnotation {
	var out []KindAnnotation
	for _, a := range e.Kinds {
		if c.opts.wants(a.Kind) {
			out = append(out, a)
		}
	}
	return out
}

// classify returns the catalog key of the package with the given ID and
// checks the one-version-per-epoch invariant.
func (c *collector) classify(id string) (Key, error) {
	if k, ok := c.keys[id]; ok {
		return k, nil
	}
	p := c.packages[id]
	epoch, err := crates.EpochFromVersion(p.Version)
	if err != nil {
		return Key{}, errors.Wrap(errors.ErrCodeMalformedVersion, err, "package %q", p.ID)
	}
	k := Key{Name: p.Name, Epoch: epoch}
	if other, taken := c.entries[k]; taken && other.pkg.ID != p.ID {
		return Key{}, errors.New(errors.ErrCodeConflictingVersions,
			"packages %q and %q both resolve to %s", other.pkg.ID, p.ID, k)
	}
	c.keys[id] = k
	if _, ok := c.entries[k]; !ok {
		c.entries[k] = &entry{
			pkg:   p,
			kinds: make(map[DependencyKind][]contribution),
			deps:  make(map[DependencyKind]map[Key]bool),
		}
	}
	return k, nil
}

// group assigns every edge to the entry of its target.
func (c *collector) group() error {
	for i := range c.doc.Edges {
		e := &c.doc.Edges[i]
		for _, id := range []string{e.From, e.To} {
			if _, ok := c.packages[id]; !ok {
				return errors.New(errors.ErrCodeInvalidMetadata, "edge references unknown package %q", id)
			}
		}
		if c.workspace[e.To] && !c.opts.IncludeWorkspace {
			c.opts.Logger("skipping workspace member %s", e.To)
			continue
		}
		annotations := c.annotations(e)
		if len(annotations) == 0 {
			continue
		}
		k, err := c.classify(e.To)
		if err != nil {
			return err
		}
		features := NewFeatureSet(e.Features...)
		ent := c.entries[k]
		for _, a := range annotations {
			ent.kinds[a.Kind] = append(ent.kinds[a.Kind], contribution{
				features:  features,
				platforms: OnPlatform(a.Target),
			})
		}
	}
	return nil
}

// link records, for every catalog entry, the entries it depends on itself.
func (c *collector) link() {
	for i := range c.doc.Edges {
		e := &c.doc.Edges[i]
		from, ok := c.keys[e.From]
		if !ok {
			continue
		}
		to, ok := c.keys[e.To]
		if !ok {
			continue
		}
		ent := c.entries[from]
		for _, a := range c.annotations(e) {
			if ent.deps[a.Kind] == nil {
				ent.deps[a.Kind] = make(map[Key]bool)
			}
			ent.deps[a.Kind][to] = true
		}
	}
}

func (c *collector) emit() []*Dependency {
	out := make([]*Dependency, 0, len(c.entries))
	for k, ent := range c.entries {
		d := &Dependency{
			PackageName:     k.Name,
			Epoch:           k.Epoch,
			Version:         ent.pkg.Version,
			Features:        NewFeatureSet(ent.pkg.Features...).Sorted(),
			Local:           ent.pkg.Local(),
			ManifestPath:    ent.pkg.ManifestPath,
			DependencyKinds: make(map[DependencyKind]*DependencyKindInfo, len(ent.kinds)),
			Dependencies:    make(map[DependencyKind][]Key, len(ent.deps)),
		}
		for kind, contribs := range ent.kinds {
			d.DependencyKinds[kind] = merge(contribs)
		}
		for kind, targets := range ent.deps {
			keys := make([]Key, 0, len(targets))
			for t := range targets {
				keys = append(keys, t)
			}
			slices.SortFunc(keys, Key.Compare)
			d.Dependencies[kind] = keys
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *Dependency) int { return a.Key().Compare(b.Key()) })
	c.opts.Logger("collected %d dependencies from %d edges", len(out), len(c.doc.Edges))
	return out
}

// merge folds the contributions of every edge of one kind.
func merge(contribs []contribution) *DependencyKindInfo {
	features := make([]FeatureSet, len(contribs))
	var platforms PlatformSet
	for i, c := range contribs {
		features[i] = c.features
		platforms = platforms.Union(c.platforms)
	}
	return &DependencyKindInfo{
		Features:  UnionAll(features...).Sorted(),
		Platforms: platforms.Targets(),
	}
}
