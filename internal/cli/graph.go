package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratecat/pkg/pipeline"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags  collectFlags
		render pipeline.RenderOptions
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph <metadata.json|->",
		Short: "Draw the catalog as a Graphviz diagram",
		Long: `Draw the catalog as a Graphviz diagram.

Nodes are catalog entries (crate@epoch). Solid edges are normal
dependencies, dashed edges build dependencies and dotted edges dev
dependencies. Local crates are shaded.

  cratecat graph metadata.json -f svg -o deps.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatDOT && format != pipeline.FormatSVG {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", format)
			}
			opts, err := flags.options(cmd, c.Config)
			if err != nil {
				return err
			}
			result, err := c.runCollect(cmd.Context(), cmd.InOrStdin(), args[0], opts, flags.noCache)
			if err != nil {
				return err
			}
			out, err := pipeline.Render(cmd.Context(), result.Catalog, format, render)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&render.Detailed, "detailed", false, "include version and features in node labels")
	cmd.Flags().StringVar(&render.Root, "root", "", "add a root node linked to every top-level entry")

	return cmd
}
