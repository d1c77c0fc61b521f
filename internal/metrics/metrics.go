// Package metrics provides Prometheus instrumentation for the FoodBridge API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MatchRequestsTotal counts ranking invocations, labeled by outcome:
	// "matched", "no_candidates", "invalid", or "error".
	MatchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodbridge_match_requests_total",
		Help: "Total number of NGO ranking invocations",
	}, []string{"outcome"})

	// MatchDuration records end-to-end ranking latency, including the
	// claim-history fan-out.
	MatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodbridge_match_duration_seconds",
		Help:    "Time to rank recipient organizations for a listing",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// HistoryLookupFailures counts per-candidate claim-history lookups that
	// fell back to the new-recipient reliability default.
	HistoryLookupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodbridge_history_lookup_failures_total",
		Help: "Claim-history lookups absorbed by the reliability fallback",
	})

	// ListingsCreatedTotal counts donation listings accepted by the API.
	ListingsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "foodbridge_listings_created_total",
		Help: "Total number of donation listings created",
	})

	// ClaimTransitionsTotal counts delivery status transitions, labeled by
	// target status.
	ClaimTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "foodbridge_claim_transitions_total",
		Help: "Total number of claim status transitions",
	}, []string{"to"})
)

func init() {
	prometheus.MustRegister(
		MatchRequestsTotal,
		MatchDuration,
		HistoryLookupFailures,
		ListingsCreatedTotal,
		ClaimTransitionsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
