package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratecat/pkg/pipeline"
)

// collectCommand creates the collect command.
func (c *CLI) collectCommand() *cobra.Command {
	var (
		flags  collectFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "collect <metadata.json|->",
		Short: "Build the dependency catalog of a cargo metadata document",
		Long: `Build the dependency catalog of a cargo metadata document.

Produce the input with:

  cargo metadata --format-version 1 > metadata.json

or pipe it in directly:

  cargo metadata --format-version 1 | cratecat collect -

Each crate appears once per compatible version line (1.x, 0.3.x, 0.0.4),
with the features and target platforms required by each dependency kind.
Results are cached by document hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = c.Config.Output.Format
			}
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.Config)
			if err != nil {
				return err
			}
			result, err := c.runCollect(cmd.Context(), cmd.InOrStdin(), args[0], opts, flags.noCache)
			if err != nil {
				return err
			}
			out, err := pipeline.Render(cmd.Context(), result.Catalog, format, pipeline.RenderOptions{})
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatTable, "output format: table, json, yaml, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// runCollect reads the input and runs the pipeline behind a spinner.
func (c *CLI) runCollect(ctx context.Context, stdin io.Reader, arg string, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	raw, err := readInput(arg, stdin)
	if err != nil {
		return nil, err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Collecting %s...", inputName(arg)))
	spinner.Start()

	result, err := runner.Collect(ctx, raw, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return nil, ctx.Err()
		}
		spinner.StopWithError("Collection failed")
		return nil, err
	}
	spinner.Stop()

	prog.done(fmt.Sprintf("Collected %d dependencies", result.Stats.Dependencies))
	printStats(result.Stats, result.CacheHit)
	return result, nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
