package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratecat/pkg/observability"
	"github.com/matzehuels/cratecat/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve catalogs over HTTP",
		Long: `Serve catalogs over HTTP.

  POST /v1/catalog   cargo metadata JSON in, catalog JSON out
  GET  /healthz
  GET  /metrics      Prometheus metrics

Query parameters of /v1/catalog: kinds, include_workspace, refresh.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config
			if addr == "" {
				addr = cfg.Server.Addr
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewPrometheus(registry)
			observability.SetCollectHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetHTTPHooks(metrics)
			defer observability.Reset()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printKeyValue("Listening", StyleHighlight.Render(addr))
			printKeyValue("Cache", cacheLocation(cfg.CacheOptions()))

			srv := server.New(runner, server.Options{
				Addr:            addr,
				MaxBody:         cfg.Server.MaxBody,
				ReadTimeout:     cfg.Server.ReadTimeout.Duration,
				ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
				Defaults:        cfg.PipelineOptions(),
				Metrics:         metrics.Handler(),
			}, c.Logger)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
