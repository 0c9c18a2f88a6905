package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reconciliation run duration in seconds.
	ReconciliationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accountability_reconciliation_duration_seconds",
			Help:    "Duration of an accountability reconciliation run",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"trigger"},
	)

	// Findings per rule.
	MissingItemsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountability_missing_items_total",
			Help: "Total missing process artifacts detected, by rule",
		},
		[]string{"rule"},
	)

	// Remediation issues created per rule.
	RemediationCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountability_remediation_created_total",
			Help: "Total remediation issues materialized, by rule",
		},
		[]string{"rule"},
	)

	// Remediation issues auto-resolved per rule.
	RemediationResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountability_remediation_resolved_total",
			Help: "Total remediation issues auto-resolved, by rule",
		},
		[]string{"rule"},
	)

	// Time spent waiting on the per-workspace ticket lock.
	TicketLockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accountability_ticket_lock_wait_seconds",
			Help:    "Time spent acquiring the workspace ticket allocation lock",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
		},
	)
)

// RecordReconciliation records one reconciliation run.
func RecordReconciliation(trigger string, duration time.Duration) {
	ReconciliationDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}
