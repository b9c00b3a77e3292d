// Package metrics defines and registers the Prometheus metrics of the library
// catalog. It is the single source of truth for metric names, labels and help
// strings.
//
// Metrics are registered with the default registry at package init. There is
// no HTTP exposition; WriteTextfile dumps the registry for a node-exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// OperationsTotal counts store operations.
// Labels:
//   - store: "session" or "catalog"
//   - operation: e.g. "login", "borrow"
//   - result: "ok" or "error"
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of store operations, by store, operation and result.",
	},
	[]string{"store", "operation", "result"},
)

// OperationDuration measures operation latency including the simulated delay.
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of store operations including simulated persistence latency.",
		Buckets:   []float64{.01, .05, .1, .25, .5, .75, 1, 2.5, 5},
	},
	[]string{"store", "operation"},
)

// Books tracks the size of the in-memory catalog.
var Books = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "books",
		Help:      "Number of records in the catalog.",
	},
)

// ActiveLoans tracks the number of borrowed records.
var ActiveLoans = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_loans",
		Help:      "Number of records currently borrowed.",
	},
)

// Observe records one finished operation started at start.
func Observe(store, operation string, start time.Time, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	OperationsTotal.WithLabelValues(store, operation, result).Inc()
	OperationDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}

// SetCatalogSize updates both catalog gauges.
func SetCatalogSize(books, loans int) {
	Books.Set(float64(books))
	ActiveLoans.Set(float64(loans))
}

// WriteTextfile writes every metric of the default gatherer to path in the
// Prometheus text format. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
