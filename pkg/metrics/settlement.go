package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const OutcomeOK = "ok"

// SettlementMetrics instruments order settlement operations.
type SettlementMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	retries    *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on reg. A nil
// registerer yields a no-op recorder.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	factory := promauto.With(reg)
	return &SettlementMetrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_operations_total",
			Help: "Settlement operations partitioned by outcome.",
		}, []string{"operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "settlement_operation_duration_seconds",
			Help:    "Settlement operation latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_tx_retries_total",
			Help: "Transactions replayed after a transient datastore conflict.",
		}, []string{"operation"}),
	}
}

// Observe records one finished operation. outcome is OutcomeOK or an error code.
func (m *SettlementMetrics) Observe(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeOK
	}
	m.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
}

// IncRetry counts a replayed transaction.
func (m *SettlementMetrics) IncRetry(operation string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(operation)).Inc()
}
