package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_management_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RecipeEvents counts published lifecycle events by type and result (ok|error).
	RecipeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_management_events_total",
			Help: "Recipe lifecycle events handed to the broker",
		},
		[]string{"type", "result"},
	)

	// CacheLookups counts recipe cache reads by result (hit|miss|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_management_cache_lookups_total",
			Help: "Recipe cache lookups",
		},
		[]string{"result"},
	)

	// RateLimited counts requests rejected by the write rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_management_rate_limited_total",
			Help: "Requests rejected by the write rate limiter",
		},
	)
)
