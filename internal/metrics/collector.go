// Package metrics provides internal Prometheus metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the session-level metrics. All methods are safe on a
// nil receiver so callers can leave metrics disabled.
type Collector struct {
	sessionsTotal  *prometheus.CounterVec
	sessionRounds  prometheus.Histogram
	inferenceRetry *prometheus.CounterVec
	degradedRoles  *prometheus.CounterVec
	conflictsTotal *prometheus.CounterVec
}

// NewCollector registers the paperflow metrics with reg. Passing
// prometheus.DefaultRegisterer wires them into the default exposition.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		sessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Total sessions by terminal result (converged, exhausted, failed)",
			},
			[]string{"result"},
		),
		sessionRounds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_rounds",
				Help:      "Rounds used per session",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			},
		),
		inferenceRetry: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inference_retries_total",
				Help:      "Inference retries by role",
			},
			[]string{"role"},
		),
		degradedRoles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_roles_total",
				Help:      "Roles degraded to an unavailable placeholder after retry exhaustion",
			},
			[]string{"role"},
		),
		conflictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "consistency_conflicts_total",
				Help:      "Consistency conflicts by flagged role",
			},
			[]string{"role"},
		),
	}
}

// SessionFinished records a terminal session result and its round count.
func (c *Collector) SessionFinished(result string, rounds int) {
	if c == nil {
		return
	}
	c.sessionsTotal.WithLabelValues(result).Inc()
	c.sessionRounds.Observe(float64(rounds))
}

// Retry records one inference retry for a role.
func (c *Collector) Retry(role string) {
	if c == nil {
		return
	}
	c.inferenceRetry.WithLabelValues(role).Inc()
}

// Degraded records a role degraded to a placeholder contribution.
func (c *Collector) Degraded(role string) {
	if c == nil {
		return
	}
	c.degradedRoles.WithLabelValues(role).Inc()
}

// Conflict records a consistency conflict flagged against a role.
func (c *Collector) Conflict(role string) {
	if c == nil {
		return
	}
	c.conflictsTotal.WithLabelValues(role).Inc()
}
