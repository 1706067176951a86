package deps

// PackageRecord is one package of a resolved metadata document.
type PackageRecord struct {
	ID           string   // Identifier unique within the document
	Name         string   // Package name
	Version      string   // Semantic version string
	Features     []string // Declared feature names
	Source       string   // Registry or git source; empty for path packages
	ManifestPath string   // Path of the package manifest, if known
}

// Local reports whether the package comes from a local path rather than a
// registry or git source.
func (p *PackageRecord) Local() bool { return p.Source == "" }

// KindAnnotation marks a resolution edge as needed for one dependency kind,
// optionally only on one target platform.
type KindAnnotation struct {
	Kind   DependencyKind
	Target string // Platform cfg expression or triple; empty for all platforms
}

// ResolutionEdge is a resolved dependency from one package onto another.
type ResolutionEdge struct {
	From     string           // ID of the requesting package
	To       string           // ID of the required package
	Kinds    []KindAnnotation // At least one annotation
	Features []string         // Features activated on To by this edge
}

// Document is a resolved dependency graph: the input of [Collect].
// It is produced by a schema boundary such as the rust package, which
// decodes `cargo metadata` output.
type Document struct {
	Packages         []PackageRecord
	Edges            []ResolutionEdge
	WorkspaceMembers []string // IDs of first-party packages
	Root             string   // ID of the root package, if any
}

// EdgeCount returns the number of edges, tolerating a nil document.
func (d *Document) EdgeCount() int {
	if d == nil {
		return 0
	}
	return len(d.Edges)
}

// PackageCount returns the number of packages, tolerating a nil document.
func (d *Document) PackageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Packages)
}
