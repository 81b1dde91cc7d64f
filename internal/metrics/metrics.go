// Package metrics exposes Prometheus instruments for HTTP traffic, cron ticks
// and the calendar cache.
package metrics

import (
	"net/http"
	"time"

	"daybook/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, d time.Duration)
	IncCronAction(job, action string)
	ObserveCronDuration(job string, d time.Duration)
	IncCacheHits()
	IncCacheMisses()
	Handler() http.Handler
}

type prom struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cronActions     *prometheus.CounterVec
	cronDuration    *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// New returns a Prometheus provider with its own registry, or a no-op one
// when metrics are disabled.
func New(cfg *config.Config) Provider {
	if !cfg.MetricsEnabled {
		return Noop()
	}

	reg := prometheus.NewRegistry()
	m := &prom{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daybook_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		cronActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_cron_actions_total",
			Help: "Per-user cron outcomes by job and action",
		}, []string{"job", "action"}),

		cronDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daybook_cron_duration_seconds",
			Help:    "Duration of one cron tick in seconds",
			Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120},
		}, []string{"job"}),

		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_calendar_cache_hits_total",
			Help: "Total number of calendar cache hits",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_calendar_cache_misses_total",
			Help: "Total number of calendar cache misses",
		}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.cronActions,
		m.cronDuration,
		m.cacheHits,
		m.cacheMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *prom) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, statusBucket(status)).Inc()
}

func (m *prom) ObserveRequestDuration(route string, d time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *prom) IncCronAction(job, action string) {
	m.cronActions.WithLabelValues(job, action).Inc()
}

func (m *prom) ObserveCronDuration(job string, d time.Duration) {
	m.cronDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *prom) IncCacheHits()   { m.cacheHits.Inc() }
func (m *prom) IncCacheMisses() { m.cacheMisses.Inc() }

func (m *prom) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop returns a provider that records nothing.
func Noop() Provider { return noop{} }

type noop struct{}

func (noop) IncRequestsTotal(string, int)                 {}
func (noop) ObserveRequestDuration(string, time.Duration) {}
func (noop) IncCronAction(string, string)                 {}
func (noop) ObserveCronDuration(string, time.Duration)    {}
func (noop) IncCacheHits()                                {}
func (noop) IncCacheMisses()                              {}
func (noop) Handler() http.Handler                        { return http.NotFoundHandler() }
