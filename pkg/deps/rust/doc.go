// Package rust decodes Cargo's resolved metadata into a [deps.Document].
//
// # Overview
//
// `cargo metadata --format-version 1` prints the workspace packages, every
// package of the resolved graph and the resolver's view of which package
// depends on which, for which build phase and with which features. This
// package is the schema boundary between that JSON and [deps.Collect]:
//
//	doc, err := rust.ReadMetadataFile("metadata.json")
//	catalog, err := deps.Collect(doc, deps.Options{})
//
// # Mapping
//
// Each resolve node dependency becomes one [deps.ResolutionEdge]. Its
// `dep_kinds` entries become [deps.KindAnnotation] values: a null kind is
// Normal, "build" is Build and "dev" is Development. Documents written by
// Cargo before 1.41 carry no `dep_kinds`; their edges are treated as
// unconditional Normal dependencies.
//
// The features of an edge are the features Cargo resolved on its target,
// which already include the implied "default" feature and every feature
// enabled transitively.
//
// # Errors
//
// A document whose version is not 1 fails with UNSUPPORTED_FORMAT_VERSION.
// Bad JSON, a missing resolve section (as produced by --no-deps), an unknown
// dependency kind or a reference to an unknown package fail with
// INVALID_METADATA. Versions are not checked here; see [deps.Collect].
//
// [deps.Document]: github.com/matzehuels/cratecat/pkg/deps.Document
// [deps.Collect]: github.com/matzehuels/cratecat/pkg/deps.Collect
// [deps.ResolutionEdge]: github.com/matzehuels/cratecat/pkg/deps.ResolutionEdge
// [deps.KindAnnotation]: github.com/matzehuels/cratecat/pkg/deps.KindAnnotation
package rust
