package rust

import (
	"encoding/json"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/errors"
)

// registryPrefix starts the source of packages fetched from a registry.
const registryPrefix = "registry+"

// wire types mirror the subset of the cargo metadata schema we read.

type metadataJSON struct {
	Version          *int          `json:"version"`
	Packages         []packageJSON `json:"packages"`
	WorkspaceMembers []string      `json:"workspace_members"`
	Resolve          *resolveJSON  `json:"resolve"`
}

type packageJSON struct {
	Name         string              `json:"name"`
	Version      string              `json:"version"`
	ID           string              `json:"id"`
	Source       *string             `json:"source"`
	Features     map[string][]string `json:"features"`
	ManifestPath string              `json:"manifest_path"`
}

type resolveJSON struct {
	Root  *string    `json:"root"`
	Nodes []nodeJSON `json:"nodes"`
}

type nodeJSON struct {
	ID           string        `json:"id"`
	Dependencies []string      `json:"dependencies"`
	Deps         []nodeDepJSON `json:"deps"`
	Features     []string      `json:"features"`
}

type nodeDepJSON struct {
	Name     string        `json:"name"`
	Pkg      string        `json:"pkg"`
	DepKinds []depKindJSON `json:"dep_kinds"`
}

type depKindJSON struct {
	Kind   *string `json:"kind"`
	Target *string `json:"target"`
}

// ReadMetadataFile reads and decodes a cargo metadata document from path.
func ReadMetadataFile(path string) (*deps.Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "metadata file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ParseMetadata(f)
}

// ParseMetadata decodes the output of `cargo metadata --format-version 1`.
func ParseMetadata(r io.Reader) (*deps.Document, error) {
	var m metadataJSON
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "decode cargo metadata")
	}
	if m.Version == nil {
		return nil, errors.New(errors.ErrCodeInvalidMetadata, "cargo metadata has no format version")
	}
	if *m.Version != FormatVersion {
		return nil, errors.New(errors.ErrCodeUnsupportedFormatVersion,
			"cargo metadata format version %d (want %d)", *m.Version, FormatVersion)
	}
	if m.Resolve == nil {
		return nil, errors.New(errors.ErrCodeInvalidMetadata,
			"cargo metadata has no resolve section (was it produced with --no-deps?)")
	}

	doc := &deps.Document{
		Packages:         make([]deps.PackageRecord, 0, len(m.Packages)),
		WorkspaceMembers: m.WorkspaceMembers,
	}
	known := make(map[string]bool, len(m.Packages))
	for _, p := range m.Packages {
		rec, err := convertPackage(p)
		if err != nil {
			return nil, err
		}
		known[rec.ID] = true
		doc.Packages = append(doc.Packages, rec)
	}

	resolved := make(map[string][]string, len(m.Resolve.Nodes))
	for _, n := range m.Resolve.Nodes {
		if !known[n.ID] {
			return nil, errors.New(errors.ErrCodeInvalidMetadata, "resolve node %q is not a known package", n.ID)
		}
		resolved[n.ID] = n.Features
	}
	if m.Resolve.Root != nil {
		if !known[*m.Resolve.Root] {
			return nil, errors.New(errors.ErrCodeInvalidMetadata, "resolve root %q is not a known package", *m.Resolve.Root)
		}
		doc.Root = *m.Resolve.Root
	}
	for _, id := range doc.WorkspaceMembers {
		if !known[id] {
			return nil, errors.New(errors.ErrCodeInvalidMetadata, "workspace member %q is not a known package", id)
		}
	}

	for _, n := range m.Resolve.Nodes {
		edges, err := convertNode(n, known, resolved)
		if err != nil {
			return nil, err
		}
		doc.Edges = append(doc.Edges, edges...)
	}
	return doc, nil
}

func convertPackage(p packageJSON) (deps.PackageRecord, error) {
	if p.ID == "" {
		return deps.PackageRecord{}, errors.New(errors.ErrCodeInvalidMetadata, "package %q has no id", p.Name)
	}
	validate := errors.ValidatePackageName
	if p.Source != nil && strings.HasPrefix(*p.Source, registryPrefix) {
		validate = errors.ValidateCratesPackageName
	}
	if err := validate(p.Name); err != nil {
		return deps.PackageRecord{}, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "package %q", p.ID)
	}
	features := make([]string, 0, len(p.Features))
	for f := range p.Features {
		features = append(features, f)
	}
	slices.Sort(features)

	rec := deps.PackageRecord{
		ID:           p.ID,
		Name:         p.Name,
		Version:      p.Version,
		Features:     features,
		ManifestPath: p.ManifestPath,
	}
	if p.Source != nil {
		rec.Source = *p.Source
	}
	return rec, nil
}

func convertNode(n nodeJSON, known map[string]bool, resolved map[string][]string) ([]deps.ResolutionEdge, error) {
	edge := func(to string, kinds []deps.KindAnnotation) (deps.ResolutionEdge, error) {
		if !known[to] {
			return deps.ResolutionEdge{}, errors.New(errors.ErrCodeInvalidMetadata,
				"package %q depends on unknown package %q", n.ID, to)
		}
		return deps.ResolutionEdge{From: n.ID, To: to, Kinds: kinds, Features: resolved[to]}, nil
	}

	// Cargo before 1.41 only lists dependency IDs.
	if n.Deps == nil {
		edges := make([]deps.ResolutionEdge, 0, len(n.Dependencies))
		for _, id := range n.Dependencies {
			e, err := edge(id, unconditional())
			if err != nil {
				return nil, err
			}
			edges = append(edges, e)
		}
		return edges, nil
	}

	edges := make([]deps.ResolutionEdge, 0, len(n.Deps))
	for _, d := range n.Deps {
		kinds, err := convertKinds(d.DepKinds)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "dependency %s of %q", d.Name, n.ID)
		}
		e, err := edge(d.Pkg, kinds)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func convertKinds(in []depKindJSON) ([]deps.KindAnnotation, error) {
	if len(in) == 0 {
		return unconditional(), nil
	}
	out := make([]deps.KindAnnotation, 0, len(in))
	for _, k := range in {
		a := deps.KindAnnotation{Kind: deps.Normal}
		if k.Kind != nil {
			kind, err := deps.ParseDependencyKind(*k.Kind)
			if err != nil {
				return nil, err
			}
			a.Kind = kind
		}
		if k.Target != nil {
			a.Target = *k.Target
		}
		out = append(out, a)
	}
	return out, nil
}

func unconditional() []deps.KindAnnotation {
	return []deps.KindAnnotation{{Kind: deps.Normal}}
}
