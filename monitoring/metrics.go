// Package monitoring exports verification metrics to Prometheus.
package monitoring

import (
	"net/http"

	"github.com/lightningnetwork/towercheck/verifier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "towercheck"

// Metrics collects the outcome and duration of verifications. It implements
// verifier.Observer.
type Metrics struct {
	registry *prometheus.Registry

	verifications *prometheus.CounterVec
	duration      prometheus.Histogram
}

// A compile time check to ensure Metrics implements the verifier.Observer
// interface.
var _ verifier.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them, together with the
// process and Go runtime collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verifications_total",
				Help:      "Number of verifications by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_duration_seconds",
			Help:      "Time spent verifying a bundle.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	// Initialise every outcome so that rates can be computed from the
	// first verification on.
	for _, outcome := range verifier.AllOutcomes() {
		m.verifications.WithLabelValues(outcome.String())
	}

	m.registry.MustRegister(
		m.verifications,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{},
		),
	)

	return m
}

// Observe records a verification result.
//
// NOTE: This is part of the verifier.Observer interface.
func (m *Metrics) Observe(res *verifier.Result) {
	m.verifications.WithLabelValues(res.Outcome.String()).Inc()
	m.duration.Observe(res.Duration.Seconds())
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
