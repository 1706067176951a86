package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/io"
	"github.com/matzehuels/cratecat/pkg/render/nodelink"
)

// RenderOptions configures [Render].
type RenderOptions struct {
	Detailed bool   // Detailed node labels (dot, svg)
	Root     string // Root node name (dot, svg)
}

// Render encodes a catalog in the given output format.
func Render(ctx context.Context, catalog []*deps.Dependency, format string, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatTable:
		buf.WriteString(io.Table(catalog))
		buf.WriteByte('\n')
	case FormatJSON:
		if err := io.WriteJSON(catalog, &buf); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := io.WriteYAML(catalog, &buf); err != nil {
			return nil, err
		}
	case FormatDOT:
		buf.WriteString(nodelink.ToDOT(catalog, nodelink.Options{Detailed: opts.Detailed, Root: opts.Root}))
	case FormatSVG:
		dot := nodelink.ToDOT(catalog, nodelink.Options{Detailed: opts.Detailed, Root: opts.Root})
		return nodelink.RenderSVG(ctx, dot)
	}
	return buf.Bytes(), nil
}
