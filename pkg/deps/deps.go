package deps

import (
	"slices"

	"github.com/matzehuels/cratecat/pkg/crates"
)

// Options configures dependency collection.
type Options struct {
	Kinds            []DependencyKind     // Kinds to collect (default: all)
	IncludeWorkspace bool                 // Keep workspace members that other members depend on
	Logger           func(string, ...any) // Debug callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if len(opts.Kinds) == 0 {
		opts.Kinds = slices.Clone(AllKinds)
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// wants reports whether kind k is collected.
func (o Options) wants(k DependencyKind) bool {
	return slices.Contains(o.Kinds, k)
}

// DependencyKindInfo describes how a dependency is used for one kind.
type DependencyKindInfo struct {
	// Features is the sorted union of features activated by every edge of
	// this kind. It is empty, never nil, when no feature is activated.
	Features []string
	// Platforms holds the sorted platform conditions under which the
	// dependency is needed for this kind, or nil when it is needed on every
	// platform.
	Platforms []string
}

// Dependency is one catalog entry: a package at one compatibility epoch,
// with everything its requesters need from it.
type Dependency struct {
	PackageName  string
	Epoch        crates.Epoch
	Version      string   // Resolved version
	Features     []string // Declared features of the package, sorted
	Local        bool     // Package comes from a local path
	ManifestPath string

	// DependencyKinds holds an entry for each kind the package is required
	// for, and no others.
	DependencyKinds map[DependencyKind]*DependencyKindInfo

	// Dependencies lists the catalog entries this package itself depends on,
	// per kind, sorted.
	Dependencies map[DependencyKind][]Key
}

// Key returns the catalog key of the dependency.
func (d *Dependency) Key() Key {
	return Key{Name: d.PackageName, Epoch: d.Epoch}
}

// Kinds returns the kinds the dependency is required for, in declaration order.
func (d *Dependency) Kinds() []DependencyKind {
	var kinds []DependencyKind
	for _, k := range AllKinds {
		if _, ok := d.DependencyKinds[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Kind returns the info for kind k, or nil when the package is not required
// for that kind.
func (d *Dependency) Kind(k DependencyKind) *DependencyKindInfo {
	return d.DependencyKinds[k]
}
