// Package pkg holds the cratecat libraries.
//
// # Overview
//
// cratecat reduces the resolved dependency graph printed by
// `cargo metadata --format-version 1` to a catalog: one record per package and
// compatibility epoch, with the features and platforms each dependency kind
// needs. The packages are:
//
//  1. [crates] - Version epochs (1.x, 0.3.x, 0.0.4)
//  2. [deps] - The metadata document model and the collector
//  3. [deps/rust] - The cargo metadata decoder
//  4. [io] - JSON, YAML and table encoders of catalogs
//  5. [render/nodelink] - Graphviz DOT and SVG of catalogs
//  6. [cache] - Catalog caches (file, memory, Redis)
//  7. [pipeline] - Decode, collect and cache in one call
//  8. [server] - The HTTP service
//
// # Data Flow
//
//	cargo metadata JSON
//	         ↓
//	    [deps/rust] (decode into a deps.Document)
//	         ↓
//	    [deps] (group edges by name@epoch)
//	         ↓
//	    [io] / [render/nodelink] (encode)
//
// [pipeline.Runner] wraps these stages with a [cache.Cache] keyed by the
// document hash.
//
// # Quick Start
//
//	doc, err := rust.ReadMetadataFile("metadata.json")
//	if err != nil {
//	    return err
//	}
//	catalog, err := deps.Collect(doc, deps.Options{})
//	if errors.Is(err, errors.ErrCodeConflictingVersions) {
//	    // two versions of one package share an epoch
//	}
//	io.WriteJSON(catalog, os.Stdout)
package pkg
