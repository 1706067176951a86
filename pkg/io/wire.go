package io

import (
	"maps"
	"slices"

	"github.com/matzehuels/cratecat/pkg/crates"
	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/errors"
)

type catalog struct {
	Dependencies []Entry `json:"dependencies" yaml:"dependencies"`
}

// Entry is the wire form of one [deps.Dependency].
type Entry struct {
	Name         string               `json:"name" yaml:"name"`
	Epoch        string               `json:"epoch" yaml:"epoch"`
	Version      string               `json:"version" yaml:"version"`
	Features     []string             `json:"features" yaml:"features"`
	Local        bool                 `json:"local,omitempty" yaml:"local,omitempty"`
	ManifestPath string               `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty"`
	Kinds        map[string]KindEntry `json:"kinds" yaml:"kinds"`
	Dependencies map[string][]string  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// KindEntry is the wire form of a [deps.DependencyKindInfo].
type KindEntry struct {
	Features  []string `json:"features" yaml:"features"`
	Platforms []string `json:"platforms,omitempty" yaml:"platforms,omitempty"`
}

// Entries converts a catalog to its wire form.
func Entries(list []*deps.Dependency) []Entry {
	out := make([]Entry, len(list))
	for i, d := range list {
		out[i] = toEntry(d)
	}
	return out
}

func toEntry(d *deps.Dependency) Entry {
	e := Entry{
		Name:         d.PackageName,
		Epoch:        d.Epoch.String(),
		Version:      d.Version,
		Features:     nonNil(d.Features),
		Local:        d.Local,
		ManifestPath: d.ManifestPath,
		Kinds:        make(map[string]KindEntry, len(d.DependencyKinds)),
	}
	for kind, info := range d.DependencyKinds {
		e.Kinds[kind.String()] = KindEntry{Features: nonNil(info.Features), Platforms: info.Platforms}
	}
	if len(d.Dependencies) > 0 {
		e.Dependencies = make(map[string][]string, len(d.Dependencies))
		for kind, keys := range d.Dependencies {
			names := make([]string, len(keys))
			for i, k := range keys {
				names[i] = k.String()
			}
			e.Dependencies[kind.String()] = names
		}
	}
	return e
}

// FromEntries converts wire entries back to a catalog, validating epochs,
// kinds and keys.
func FromEntries(entries []Entry) ([]*deps.Dependency, error) {
	out := make([]*deps.Dependency, len(entries))
	for i, e := range entries {
		d, err := fromEntry(e)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "dependency %s", e.Name)
		}
		out[i] = d
	}
	return out, nil
}

func fromEntry(e Entry) (*deps.Dependency, error) {
	epoch, err := crates.ParseEpoch(e.Epoch)
	if err != nil {
		return nil, err
	}
	d := &deps.Dependency{
		PackageName:     e.Name,
		Epoch:           epoch,
		Version:         e.Version,
		Features:        nonNil(e.Features),
		Local:           e.Local,
		ManifestPath:    e.ManifestPath,
		DependencyKinds: make(map[deps.DependencyKind]*deps.DependencyKindInfo, len(e.Kinds)),
		Dependencies:    make(map[deps.DependencyKind][]deps.Key, len(e.Dependencies)),
	}
	for _, name := range slices.Sorted(maps.Keys(e.Kinds)) {
		kind, err := deps.ParseDependencyKind(name)
		if err != nil {
			return nil, err
		}
		info := e.Kinds[name]
		d.DependencyKinds[kind] = &deps.DependencyKindInfo{
			Features:  nonNil(info.Features),
			Platforms: info.Platforms,
		}
	}
	for _, name := range slices.Sorted(maps.Keys(e.Dependencies)) {
		kind, err := deps.ParseDependencyKind(name)
		if err != nil {
			return nil, err
		}
		keys := make([]deps.Key, len(e.Dependencies[name]))
		for i, s := range e.Dependencies[name] {
			if keys[i], err = deps.ParseKey(s); err != nil {
				return nil, err
			}
		}
		d.Dependencies[kind] = keys
	}
	return d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
