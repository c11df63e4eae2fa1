package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// OrderMetrics records order engine outcomes.
type OrderMetrics struct {
	duration       *prometheus.HistogramVec
	operations     *prometheus.CounterVec
	stockConflicts *prometheus.CounterVec
}

// NewOrderMetrics registers the order engine metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orders_operation_duration_seconds",
		Help:    "Duration of order engine operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_operations_total",
		Help: "Order engine operations by outcome.",
	}, []string{"operation", "outcome", "reason"})
	stockConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_stock_conflicts_total",
		Help: "Requests rejected because a product had insufficient stock.",
	}, []string{"operation"})
	reg.MustRegister(duration, operations, stockConflicts)
	return &OrderMetrics{
		duration:       duration,
		operations:     operations,
		stockConflicts: stockConflicts,
	}
}

// ObserveDuration records how long the named operation took.
func (m *OrderMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

// IncSuccess counts a committed operation.
func (m *OrderMetrics) IncSuccess(operation string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(operation), OutcomeSuccess, "").Inc()
}

// IncFailure counts a rolled back operation with its error reason.
func (m *OrderMetrics) IncFailure(operation, reason string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(operation), OutcomeFailure, reason).Inc()
}

// IncStockConflict counts an OUT_OF_STOCK rejection.
func (m *OrderMetrics) IncStockConflict(operation string) {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
