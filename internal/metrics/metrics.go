// Package metrics exposes write-path and HTTP counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds grove's collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Entries       *prometheus.CounterVec
	Waterings     *prometheus.CounterVec
	Cheers        *prometheus.CounterVec
	HealthScores  prometheus.Histogram
	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// action: created or edited
		Entries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grove_entries_total",
			Help: "Journal entries written by kind and action",
		}, []string{"kind", "action"}),

		// result: created, duplicate, self, error
		Waterings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grove_waterings_total",
			Help: "Watering attempts by result",
		}, []string{"result"}),

		Cheers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grove_cheers_total",
			Help: "Cheers recorded by post kind",
		}, []string{"kind"}),

		HealthScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "grove_health_scores",
			Help:    "Distribution of computed engagement health scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grove_http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),

		HTTPDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grove_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) EntryWritten(kind, action string) {
	if m != nil {
		m.Entries.WithLabelValues(kind, action).Inc()
	}
}

func (m *Metrics) WateringResult(result string) {
	if m != nil {
		m.Waterings.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) CheerRecorded(kind string) {
	if m != nil {
		m.Cheers.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) HealthScored(score int) {
	if m != nil {
		m.HealthScores.Observe(float64(score))
	}
}

func (m *Metrics) RequestServed(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPDurations.WithLabelValues(route).Observe(seconds)
}
