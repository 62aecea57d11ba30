package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsHooks records events as Prometheus metrics. All metric names are
// prefixed with "cybergraph_".
type MetricsHooks struct {
	renderDuration  *prometheus.HistogramVec
	renderErrors    *prometheus.CounterVec
	clusterDuration prometheus.Histogram
	clusters        prometheus.Gauge
	paths           *prometheus.CounterVec
	exports         *prometheus.CounterVec
	cacheRequests   *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetricsHooks creates the metrics and registers them with reg. It
// panics if they are already registered, like prometheus.MustRegister.
func NewMetricsHooks(reg prometheus.Registerer) *MetricsHooks {
	m := &MetricsHooks{
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cybergraph_render_duration_seconds",
				Help:    "Time to lay out and render one view",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view", "format"},
		),
		renderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cybergraph_render_errors_total",
				Help: "Renders that failed",
			},
			[]string{"view", "format"},
		),
		clusterDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cybergraph_cluster_duration_seconds",
				Help:    "Time to detect communities",
				Buckets: prometheus.DefBuckets,
			},
		),
		clusters: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cybergraph_clusters",
				Help: "Number of clusters found by the last community detection",
			},
		),
		paths: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cybergraph_path_searches_total",
				Help: "Shortest path searches by outcome",
			},
			[]string{"found"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cybergraph_exports_total",
				Help: "Graph exports by format and status",
			},
			[]string{"format", "status"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cybergraph_cache_requests_total",
				Help: "Cache lookups by result",
			},
			[]string{"type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cybergraph_cache_written_bytes_total",
				Help: "Bytes written to the cache",
			},
			[]string{"type"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cybergraph_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cybergraph_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
	reg.MustRegister(
		m.renderDuration, m.renderErrors,
		m.clusterDuration, m.clusters,
		m.paths, m.exports,
		m.cacheRequests, m.cacheBytes,
		m.requests, m.requestDuration,
	)
	return m
}

func (m *MetricsHooks) OnClusterComplete(_ context.Context, _, clusters int, d time.Duration) {
	m.clusterDuration.Observe(d.Seconds())
	m.clusters.Set(float64(clusters))
}

func (m *MetricsHooks) OnPathComplete(_ context.Context, _, _ string, _ int, found bool, _ time.Duration) {
	m.paths.WithLabelValues(strconv.FormatBool(found)).Inc()
}

func (m *MetricsHooks) OnRenderStart(context.Context, string, string) {}

func (m *MetricsHooks) OnRenderComplete(_ context.Context, view, format string, d time.Duration, err error) {
	if err != nil {
		m.renderErrors.WithLabelValues(view, format).Inc()
		return
	}
	m.renderDuration.WithLabelValues(view, format).Observe(d.Seconds())
}

func (m *MetricsHooks) OnExportComplete(_ context.Context, format string, _ time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.exports.WithLabelValues(format, status).Inc()
}

func (m *MetricsHooks) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *MetricsHooks) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *MetricsHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *MetricsHooks) OnRequest(context.Context, string, string) {}

func (m *MetricsHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.requests.WithLabelValues(method, route, code).Inc()
	m.requestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

var _ Hooks = (*MetricsHooks)(nil)
