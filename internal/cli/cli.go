// Package cli implements the cratecat command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratecat/pkg/buildinfo"
	"github.com/matzehuels/cratecat/pkg/cache"
	"github.com/matzehuels/cratecat/pkg/config"
	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cratecat"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cratecat turns cargo metadata into a dependency catalog",
		Long: `cratecat reads the resolved dependency graph printed by
'cargo metadata --format-version 1' and reduces it to one record per crate and
semver-compatible version line, with the features and platforms each
dependency kind requires.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/cratecat/config.toml)")

	root.AddCommand(c.collectCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and tags the logger with a run ID.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, warnings, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	c.Logger = c.Logger.With("run", uuid.NewString()[:8])
	for _, w := range warnings {
		c.Logger.Warn(w)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.Config.Keyer(), c.Logger), nil
}

// newCache opens the configured cache. A cache that cannot be opened is
// reported and replaced by a NullCache, so collection still works.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := cache.New(ctx, c.Config.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", c.Config.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return cc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// collectFlags holds the flags shared by collect, graph and inspect.
type collectFlags struct {
	kinds            string
	includeWorkspace bool
	inputFormat      string
	noCache          bool
	refresh          bool
}

func (f *collectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kinds, "kinds", "k", "", "dependency kinds to collect: normal,build,dev (default: config)")
	cmd.Flags().BoolVar(&f.includeWorkspace, "include-workspace", false, "keep workspace members other members depend on")
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "metadata format (default: cargo)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when the catalog is cached")
}

// options merges the flags that were set on top of the configuration.
func (f *collectFlags) options(cmd *cobra.Command, cfg *config.Config) (pipeline.Options, error) {
	opts := cfg.PipelineOptions()
	if cmd.Flags().Changed("kinds") {
		kinds, err := deps.ParseDependencyKinds(parseList(f.kinds))
		if err != nil {
			return opts, err
		}
		opts.Kinds = kinds
	}
	if cmd.Flags().Changed("include-workspace") {
		opts.IncludeWorkspace = f.includeWorkspace
	}
	if f.inputFormat != "" {
		opts.InputFormat = f.inputFormat
	}
	opts.Refresh = f.refresh
	return opts, nil
}

// parseList splits a comma-separated flag value, dropping empty items.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
