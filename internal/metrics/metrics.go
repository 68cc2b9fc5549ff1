// Package metrics provides Prometheus metrics for the rewards service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks inbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rewards",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// RecommendationsTotal tracks recommendation requests by outcome
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "engine",
			Name:      "recommendations_total",
			Help:      "Total number of recommendations by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendationCacheTotal tracks recommendation cache lookups
	RecommendationCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Recommendation cache lookups by result",
		},
		[]string{"result"},
	)

	// TransactionsRecordedTotal tracks recorded purchases by optimality
	TransactionsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "engine",
			Name:      "transactions_recorded_total",
			Help:      "Total number of recorded transactions by whether the optimal card was used",
		},
		[]string{"optimal"},
	)

	// AmbiguousOverridesTotal counts (card, merchant) pairs seen with more than one override
	AmbiguousOverridesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "engine",
			Name:      "ambiguous_overrides_total",
			Help:      "Number of card/merchant pairs observed with duplicate reward overrides",
		},
	)

	// StorageFallbacksTotal counts reads and writes served by the secondary store
	StorageFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "storage",
			Name:      "fallbacks_total",
			Help:      "Operations served by the fallback store after a primary failure",
		},
		[]string{"op"},
	)

	// EventsPublishedTotal tracks outbound transaction events
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Transaction events published by status",
		},
		[]string{"status"},
	)
)
