// Package metrics exposes the Prometheus counters of the ledger write path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var (
	statementsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_statements_created_total",
			Help: "Total number of statements appended, by operation type",
		},
		[]string{"type"},
	)

	statementAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_statement_amount_total",
			Help: "Sum of appended statement amounts, by operation type",
		},
		[]string{"type"},
	)

	rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_statement_rejections_total",
			Help: "Total number of rejected statement requests, by reason",
		},
		[]string{"reason"},
	)

	lockedSectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_locked_section_duration_seconds",
			Help:    "Time spent holding per-user locks",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// StatementCreated counts one appended statement. The amount is exported
// as a float for dashboards only.
func StatementCreated(opType string, amount decimal.Decimal) {
	statementsCreated.WithLabelValues(opType).Inc()
	statementAmount.WithLabelValues(opType).Add(amount.InexactFloat64())
}

// Rejected counts a request refused for reason, e.g. "insufficient_funds".
func Rejected(reason string) {
	rejections.WithLabelValues(reason).Inc()
}

// ObserveLocked records how long operation held its locks.
func ObserveLocked(operation string, start time.Time) {
	lockedSectionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
