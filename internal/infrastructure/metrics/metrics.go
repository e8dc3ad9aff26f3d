package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	EntriesPosted     *prometheus.CounterVec
	EntriesCancelled  prometheus.Counter
	ReconcileOutcomes *prometheus.CounterVec
	ReconcileWarnings prometheus.Counter

	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferAmount   prometheus.Histogram
	TransferDuration prometheus.Histogram

	// Account metrics
	AccountsCreated prometheus.Counter
	BalanceResyncs  prometheus.Counter

	// Monitor metrics
	DriftedAccounts prometheus.Gauge
	OrphanedEntries prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EntriesPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasledger_entries_posted_total",
				Help: "Total number of ledger entries posted by origin",
			},
			[]string{"source"},
		),
		EntriesCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasledger_entries_cancelled_total",
			Help: "Total number of ledger entries cancelled",
		}),
		ReconcileOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasledger_reconcile_outcomes_total",
				Help: "Reconciled events by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		ReconcileWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasledger_reconcile_warnings_total",
			Help: "Total number of events that degraded to a warning",
		}),

		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasledger_transfers_created_total",
			Help: "Total number of transfers created",
		}),
		TransferAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kasledger_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1000, 10000, 50000, 100000, 500000, 1000000, 5000000, 10000000},
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kasledger_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		BalanceResyncs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasledger_balance_resyncs_total",
			Help: "Total number of cached balance recomputations",
		}),

		DriftedAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kasledger_drifted_accounts",
			Help: "Accounts whose cached balance disagrees with the derived one",
		}),
		OrphanedEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kasledger_orphaned_entries",
			Help: "Auto-posted entries whose origin record is gone",
		}),
	}
}
