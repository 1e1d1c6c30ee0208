// Package metrics exposes the runtime's operational counters through a
// prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-operation counters. A nil *Metrics is a valid no-op
// receiver so callers do not guard every update.
type Metrics struct {
	attempts      *prometheus.CounterVec
	retries       *prometheus.CounterVec
	throttles     *prometheus.CounterVec
	bucketCapacity prometheus.Gauge
}

// Options configure registration.
type Options struct {
	// Registry defaults to prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
	// Namespace prefixes every metric name; defaults to "smithkit".
	Namespace string
}

func New(o Options) *Metrics {
	if o.Registry == nil {
		o.Registry = prometheus.DefaultRegisterer
	}
	if o.Namespace == "" {
		o.Namespace = "smithkit"
	}

	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.Namespace,
			Name:      "attempts_total",
			Help:      "Operation attempts, successful or not.",
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.Namespace,
			Name:      "retries_total",
			Help:      "Attempts beyond the first.",
		}, []string{"operation", "reason"}),
		throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.Namespace,
			Name:      "throttles_total",
			Help:      "Attempts the service throttled.",
		}, []string{"operation"}),
		bucketCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: o.Namespace,
			Name:      "retry_bucket_capacity",
			Help:      "Remaining retry token bucket capacity.",
		}),
	}
	o.Registry.MustRegister(m.attempts, m.retries, m.throttles, m.bucketCapacity)
	return m
}

func (m *Metrics) IncAttempts(operation string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncRetries(operation, reason string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) IncThrottles(operation string) {
	if m == nil {
		return
	}
	m.throttles.WithLabelValues(operation).Inc()
}

func (m *Metrics) SetBucketCapacity(capacity int) {
	if m == nil {
		return
	}
	m.bucketCapacity.Set(float64(capacity))
}
