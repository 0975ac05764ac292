// Package prometheus implements ports.SearchMetrics with Prometheus
// collectors. Each Metrics owns its registry; nothing is registered on the
// global default registerer.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "emcee"

// Metrics implements ports.SearchMetrics.
type Metrics struct {
	registry   *prometheus.Registry
	iterations prometheus.Counter
	accepted   prometheus.Counter
	best       prometheus.Gauge
}

// NewMetrics creates the search collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		iterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "iterations_total",
			Help:      "Candidate keys scored by the search loop.",
		}),
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "accepted_total",
			Help:      "Candidate keys that strictly improved the score.",
		}),
		best: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "best_score",
			Help:      "Lowest divergence reached so far in the current walk.",
		}),
	}
}

// Iteration records one scored candidate.
func (m *Metrics) Iteration(accepted bool, best float64) {
	m.iterations.Inc()
	if accepted {
		m.accepted.Inc()
	}
	m.best.Set(best)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
