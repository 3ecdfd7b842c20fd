package exporter

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the registry served on /metrics.
type Metrics struct {
	registry     *prometheus.Registry
	anomalies    *prometheus.CounterVec
	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
}

// NewMetrics registers the snapshot collector and the simulator's own
// counters on a fresh registry.
func NewMetrics(source SnapshotSource) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solar_anomalies_total",
			Help: "Total anomalies observed, by farm and kind.",
		}, []string{"farm", "kind"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solar_simulator_ticks_total",
			Help: "Total simulation ticks completed.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solar_simulator_tick_duration_seconds",
			Help:    "Histogram of simulation tick durations.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}

	m.registry.MustRegister(
		NewSnapshotCollector(source),
		m.anomalies,
		m.ticks,
		m.tickDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordAnomaly(siteID, kind string) {
	if m == nil {
		return
	}
	m.anomalies.WithLabelValues(siteID, kind).Inc()
}

func (m *Metrics) TickCompleted(_ int, took time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(took.Seconds())
}
