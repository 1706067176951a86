// Package nodelink renders dependency catalogs as node-link diagrams.
//
// # Overview
//
// Each catalog entry becomes a box labelled with its package name and epoch;
// each outgoing dependency becomes an arrow. Arrows are solid for normal
// dependencies, dashed for build dependencies and dotted for development
// dependencies. Local packages are filled grey.
//
// # Usage
//
// Convert a catalog to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(catalog, nodelink.Options{Root: "my_app"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the resolved version and kinds
//   - Root: adds a root node pointing at every entry nothing else depends on
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package nodelink
