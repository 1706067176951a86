// Package deps turns a resolved dependency graph into a deduplicated catalog
// of external dependencies, ready for build-file generation.
//
// # Overview
//
// A package manager resolves exactly one version of each package per
// compatibility epoch and records who depends on it, for which build phase
// and with which features. Build systems want one target per package and
// epoch. [Collect] bridges the two:
//
//	doc, _ := rust.ReadMetadataFile("metadata.json")
//	catalog, err := deps.Collect(doc, deps.Options{})
//
// # Input
//
// A [Document] holds [PackageRecord] values and [ResolutionEdge] values. Each
// edge carries one or more [KindAnnotation] values (kind plus optional target
// platform) and the features it activates on its target. Ecosystem
// subpackages decode native metadata formats into a Document:
//
//   - [rust]: `cargo metadata --format-version 1`
//
// # Collection
//
// Every package that is the target of an edge is classified into a
// [crates.Epoch]. Edges whose targets share a [Key] (name and epoch) are
// grouped regardless of requester, which collapses diamond dependencies onto
// one entry. Within a group, edges are partitioned by [DependencyKind] and
// their features unioned with [FeatureSet], so
//
//	{a, b} ∪ {b, c} = [a b c]
//
// for two Normal edges. A package required only for development has no
// Normal or Build entry.
//
// Two distinct packages with the same key violate the resolver's
// one-version-per-epoch guarantee; Collect fails with CONFLICTING_VERSIONS
// rather than dropping one of them.
//
// # Options
//
// [Options] restricts the collected kinds and controls whether workspace
// members that depend on each other appear in the catalog.
//
// [rust]: github.com/matzehuels/cratecat/pkg/deps/rust
// [crates.Epoch]: github.com/matzehuels/cratecat/pkg/crates.Epoch
package deps
