package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements every hook interface with Prometheus metrics.
type Prometheus struct {
	ParseTotal       *prometheus.CounterVec
	ParseDuration    *prometheus.HistogramVec
	PackagesParsed   prometheus.Histogram
	CollectTotal     *prometheus.CounterVec
	CollectDuration  prometheus.Histogram
	CatalogSize      prometheus.Histogram
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheSetBytes    *prometheus.HistogramVec
	HTTPInFlight     prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	HTTPErrors       *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewPrometheus creates the metrics and registers them on registry.
func NewPrometheus(registry *prometheus.Registry) *Prometheus {
	sizeBuckets := prometheus.ExponentialBuckets(1, 4, 8)
	m := &Prometheus{
		ParseTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratecat_parse_total",
				Help: "Total number of metadata documents decoded",
			},
			[]string{"format", "status"},
		),
		ParseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratecat_parse_duration_seconds",
				Help:    "Metadata decoding duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		PackagesParsed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cratecat_document_packages",
				Help:    "Number of packages per decoded document",
				Buckets: sizeBuckets,
			},
		),
		CollectTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratecat_collect_total",
				Help: "Total number of catalog collections",
			},
			[]string{"status"},
		),
		CollectDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cratecat_collect_duration_seconds",
				Help:    "Catalog collection duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		CatalogSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cratecat_catalog_dependencies",
				Help:    "Number of dependencies per collected catalog",
				Buckets: sizeBuckets,
			},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratecat_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratecat_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),
		CacheSetBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratecat_cache_set_bytes",
				Help:    "Size of values written to the cache",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"key_type"},
		),
		HTTPInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cratecat_http_requests_in_flight",
				Help: "Number of HTTP requests being served",
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratecat_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratecat_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratecat_http_errors_total",
				Help: "Total number of failed HTTP requests by error code",
			},
			[]string{"method", "route", "code"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.ParseTotal,
		m.ParseDuration,
		m.PackagesParsed,
		m.CollectTotal,
		m.CollectDuration,
		m.CatalogSize,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheSetBytes,
		m.HTTPInFlight,
		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPErrors,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Prometheus) OnParseStart(context.Context, string) {}

func (m *Prometheus) OnParseComplete(_ context.Context, format string, packages, _ int, d time.Duration, err error) {
	m.ParseTotal.WithLabelValues(format, status(err)).Inc()
	m.ParseDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		m.PackagesParsed.Observe(float64(packages))
	}
}

func (m *Prometheus) OnCollectStart(context.Context, int) {}

func (m *Prometheus) OnCollectComplete(_ context.Context, dependencies int, d time.Duration, err error) {
	m.CollectTotal.WithLabelValues(status(err)).Inc()
	m.CollectDuration.Observe(d.Seconds())
	if err == nil {
		m.CatalogSize.Observe(float64(dependencies))
	}
}

func (m *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	m.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (m *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (m *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (m *Prometheus) OnRequest(context.Context, string, string) {
	m.HTTPInFlight.Inc()
}

func (m *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Prometheus) OnError(_ context.Context, method, route, code string) {
	m.HTTPErrors.WithLabelValues(method, route, code).Inc()
}

var (
	_ CollectHooks = (*Prometheus)(nil)
	_ CacheHooks   = (*Prometheus)(nil)
	_ HTTPHooks    = (*Prometheus)(nil)
)
