// Package observability exposes Prometheus metrics for the reservation core.
//
// Metrics are registered once on the default registry and served by the
// /metrics endpoint. All methods are safe on a nil *Metrics so tests and the
// CLI can run without instrumentation.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "venue"

const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultStale   = "stale"
)

// Metrics holds the collectors used by the store, the session manager and the
// change monitor.
type Metrics struct {
	// ReconcileTotal counts booking reconciliations.
	// Labels: result (success, error, stale)
	ReconcileTotal *prometheus.CounterVec

	// ReconcileDurationSeconds measures the backend fetch plus apply time.
	ReconcileDurationSeconds prometheus.Histogram

	// MutationsTotal counts store mutations.
	// Labels: operation (reserve, cancel_booking, update_table, ...), result
	MutationsTotal *prometheus.CounterVec

	// ActiveSessions tracks signed-in sessions holding a store.
	ActiveSessions prometheus.Gauge

	// ChangeEventsTotal counts change-feed rows processed.
	// Labels: collection (bookings, tables), action (INSERT, UPDATE, DELETE)
	ChangeEventsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	initOnce       sync.Once
)

// Default returns the process-wide metrics, registering them on first use.
func Default() *Metrics {
	initOnce.Do(func() {
		defaultMetrics = &Metrics{
			ReconcileTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: "store",
					Name:      "reconcile_total",
					Help:      "Total number of booking reconciliations by result",
				},
				[]string{"result"},
			),
			ReconcileDurationSeconds: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: "store",
					Name:      "reconcile_duration_seconds",
					Help:      "Duration of booking reconciliations",
					Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
				},
			),
			MutationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: "store",
					Name:      "mutations_total",
					Help:      "Total number of store mutations by operation and result",
				},
				[]string{"operation", "result"},
			),
			ActiveSessions: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: "session",
					Name:      "active",
					Help:      "Number of signed-in sessions",
				},
			),
			ChangeEventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: "changes",
					Name:      "events_total",
					Help:      "Change-feed rows processed by collection and action",
				},
				[]string{"collection", "action"},
			),
		}
	})
	return defaultMetrics
}

func (m *Metrics) ObserveReconcile(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.ReconcileTotal.WithLabelValues(result).Inc()
	if result != ResultStale {
		m.ReconcileDurationSeconds.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.MutationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) ChangeProcessed(collection, action string) {
	if m == nil {
		return
	}
	m.ChangeEventsTotal.WithLabelValues(collection, action).Inc()
}
