// Package metrics exposes the Prometheus collectors used by the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests   *prometheus.CounterVec
	completion *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codepair_requests_total",
			Help: "Requests handled by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		completion: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codepair_completion_duration_seconds",
			Help:    "Latency of upstream chat completions.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		}, []string{"operation", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.completion)
	}
	return m
}

// CountRequest increments the request counter.
func (m *Metrics) CountRequest(endpoint string, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome(err)).Inc()
}

// ObserveCompletion records the duration of one upstream call.
func (m *Metrics) ObserveCompletion(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.completion.WithLabelValues(operation, outcome(err)).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
