package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LedgerPostingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_postings_total",
		Help: "Total number of ledger postings applied",
	}, []string{"site", "direction"})

	LedgerRejectedDebitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_rejected_debits_total",
		Help: "Total number of debits rejected for insufficient stock",
	}, []string{"site"})

	TxAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_tx_attempts_total",
		Help: "Total number of ledger transaction attempts",
	}, []string{"outcome"})

	TxDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_tx_duration_seconds",
		Help:    "Latency of ledger transactions including retries",
		Buckets: prometheus.DefBuckets,
	})

	ProofUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proof_uploads_total",
		Help: "Total number of proof photo uploads",
	}, []string{"outcome"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_events_published_total",
		Help: "Total number of stock events published",
	}, []string{"type", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// Site etiqueta del ledger de una clave.
func Site(warehouse bool) string {
	if warehouse {
		return "warehouse"
	}
	return "outlet"
}
