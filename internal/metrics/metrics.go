// Package metrics exposes the Prometheus collectors for the matching
// engine and HTTP surface (SPEC_FULL §2 component 11).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "orders_submitted_total",
		Help:      "Orders accepted by the engine, by ticker and direction.",
	}, []string{"ticker", "direction", "kind"})

	OrdersRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "orders_rejected_total",
		Help:      "Orders rejected before entering the book, by error code.",
	}, []string{"code"})

	OrdersCancelled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "orders_cancelled_total",
		Help:      "Orders cancelled, by ticker.",
	}, []string{"ticker"})

	TradesExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "trades_executed_total",
		Help:      "Trades produced by the matching loop, by ticker.",
	}, []string{"ticker"})

	MatchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "exchange",
		Name:      "match_latency_seconds",
		Help:      "Time spent inside the per-instrument single-writer loop handling one command.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"ticker", "op"})

	BookDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "exchange",
		Name:      "book_depth",
		Help:      "Number of resting price levels, by ticker and side.",
	}, []string{"ticker", "side"})
)

// MustRegister registers every collector against reg. Panics on
// duplicate registration, mirroring the teacher's startup-time
// registration pattern: a metrics wiring bug should fail fast.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(OrdersSubmitted, OrdersRejected, OrdersCancelled, TradesExecuted, MatchLatency, BookDepth)
}
