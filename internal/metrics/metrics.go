// Package metrics owns the process Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	refreshRuns     *prometheus.CounterVec
	refreshUpserted prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daybook_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		refreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_aggregate_refresh_total",
			Help: "Per-user monthly aggregate refreshes by result.",
		}, []string{"result"}),
		refreshUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_aggregate_rows_upserted_total",
			Help: "label_monthly_stat rows written by the refresher.",
		}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.refreshRuns, m.refreshUpserted)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveRefresh records one user's refresh outcome.
func (m *Metrics) ObserveRefresh(err error, rows int) {
	if err != nil {
		m.refreshRuns.WithLabelValues("error").Inc()
		return
	}
	m.refreshRuns.WithLabelValues("ok").Inc()
	m.refreshUpserted.Add(float64(rows))
}
