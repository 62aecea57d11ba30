package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cybergraph/pkg/observability"
	"github.com/matzehuels/cybergraph/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Browse the graph views in a local preview server",
		Long: `Serve the graph views over HTTP until interrupted.

Routes: / (index), /graph.svg, /graph.png, /heatmap/{metric}.svg,
/path.svg?source=&target=, POST /cluster, /export/{csv,json,gexf},
/healthz and /metrics (Prometheus). Clustering from the browser saves the
labels back to the graph document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			c.installMetrics(reg)

			runner := c.newRunner(cmd.Context())
			defer runner.Close()

			srv := server.New(g, runner, server.Options{
				Addr:     addr,
				Defaults: c.cfg.ViewOptions(),
				Metric:   c.cfg.Heatmap.Metric,
				Logger:   c.Logger,
				OnChange: c.saveGraph,
				Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			})
			reg.MustRegister(
				prometheus.NewGaugeFunc(prometheus.GaugeOpts{
					Name: "cybergraph_entities",
					Help: "Entities in the served graph",
				}, func() float64 {
					n, _ := srv.Counts()
					return float64(n)
				}),
				prometheus.NewGaugeFunc(prometheus.GaugeOpts{
					Name: "cybergraph_relationships",
					Help: "Relationships in the served graph",
				}, func() float64 {
					_, n := srv.Counts()
					return float64(n)
				}),
			)

			printInfo("Preview at %s", StyleLink.Render("http://"+srv.Addr()))
			printDetail("Metrics at http://%s/metrics", srv.Addr())
			printStats(g.EntityCount(), g.RelationshipCount(), false)
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}

// installMetrics registers Prometheus hooks on reg, keeping the debug log
// hooks alongside them when --verbose is set.
func (c *CLI) installMetrics(reg prometheus.Registerer) {
	metrics := observability.NewMetricsHooks(reg)
	if c.verbose {
		observability.SetHooks(observability.Tee{observability.NewLogHooks(c.Logger), metrics})
		return
	}
	observability.SetHooks(metrics)
}
