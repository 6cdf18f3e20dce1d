package metrics

import (
	"myFoodHub/domain"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of the core consistency operations, by operation name
	OperationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "core_operation_latency_seconds",
		Help:    "Latency of account, ledger, order, rating and deletion operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Failed core operations, by operation and error kind
	OperationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "core_operation_errors_total",
		Help: "Total number of failed core operations",
	}, []string{"operation", "kind"})

	BalanceAdjustments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_balance_adjustments_total",
		Help: "Total number of applied balance adjustments",
	}, []string{"reason"})

	ReconcileCorrections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_reconcile_corrections_total",
		Help: "How many restaurant balances the reconcile sweep had to correct",
	})

	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed",
	})

	RatingConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ratings_conflicts_total",
		Help: "Rating submissions rejected because the order was already rated",
	})
)

func Init() {
	prometheus.MustRegister(
		OperationLatency,
		OperationErrors,
		BalanceAdjustments,
		ReconcileCorrections,
		OrdersPlaced,
		RatingConflicts,
	)
}

// Observe records the latency of operation and counts err, if any, under its
// error kind.
func Observe(operation string, start time.Time, err error) {
	OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		OperationErrors.WithLabelValues(operation, domain.Kind(err)).Inc()
	}
}
