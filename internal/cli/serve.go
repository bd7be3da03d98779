package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/discrete/pkg/observability"
	"github.com/matzehuels/discrete/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the enumeration API over HTTP",
		Long: `Serve starts an HTTP server with:

  GET  /healthz       liveness and build info
  POST /v1/enumerate  enumerate a presentation
  POST /v1/quotient   enumerate a quotient
  GET  /metrics       Prometheus metrics

Results are cached with the backend from the settings file, so several
instances can share a Redis or MongoDB cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := server.Options{Logger: c.Logger}
			if !noMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				hooks := observability.NewPrometheusHooks(reg)
				observability.SetEnumerationHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
				opts.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
			}

			printInfo(cmd.ErrOrStderr(), "Serving on %s", StyleValue.Render(cfg.Server.Addr))
			return server.New(runner, opts).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}
