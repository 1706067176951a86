package deps

import (
	"maps"
	"slices"
)

// FeatureSet is a set of feature names. Sets form a monoid under [FeatureSet.Union]
// with the empty set as identity, so merging the contributions of many edges
// is a fold that does not depend on edge order.
//
// Methods never mutate their receiver.
type FeatureSet map[string]struct{}

// NewFeatureSet returns a set holding names.
func NewFeatureSet(names ...string) FeatureSet {
	s := make(FeatureSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Union returns a new set holding the members of s and other.
func (s FeatureSet) Union(other FeatureSet) FeatureSet {
	out := make(FeatureSet, len(s)+len(other))
	maps.Copy(out, s)
	maps.Copy(out, other)
	return out
}

// Has reports whether name is in the set.
func (s FeatureSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in ascending order. The result is never nil.
func (s FeatureSet) Sorted() []string {
	out := slices.Collect(maps.Keys(s))
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return out
}

// UnionAll folds sets with Union, starting from the empty set.
func UnionAll(sets ...FeatureSet) FeatureSet {
	acc := FeatureSet{}
	for _, s := range sets {
		acc = acc.Union(s)
	}
	return acc
}

// PlatformSet records on which platforms a dependency is needed. The zero
// value is the identity: needed nowhere yet. Combining with an unconditional
// requirement yields "everywhere", which absorbs any later conditions.
type PlatformSet struct {
	all     bool
	targets FeatureSet
}

// AllPlatforms returns the set that is needed on every platform.
func AllPlatforms() PlatformSet { return PlatformSet{all: true} }

// OnPlatform returns the set needed only on target. An empty target means
// every platform.
func OnPlatform(target string) PlatformSet {
	if target == "" {
		return AllPlatforms()
	}
	return PlatformSet{targets: NewFeatureSet(target)}
}

// Union combines two platform sets.
func (p PlatformSet) Union(other PlatformSet) PlatformSet {
	if p.all || other.all {
		return AllPlatforms()
	}
	return PlatformSet{targets: p.targets.Union(other.targets)}
}

// All reports whether the dependency is needed on every platform.
func (p PlatformSet) All() bool { return p.all }

// Targets returns the sorted platform conditions, or nil when the dependency
// is needed on every platform.
func (p PlatformSet) Targets() []string {
	if p.all {
		return nil
	}
	return p.targets.Sorted()
}
