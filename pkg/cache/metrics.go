package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// storeHits tracks reads served from a fresh entry.
	storeHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_cache_hits_total",
			Help: "Total number of reads served from a fresh cache entry",
		},
	)

	// storeMisses tracks reads that had to fetch (missing or stale entry).
	storeMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_cache_misses_total",
			Help: "Total number of reads that required a backend fetch",
		},
	)

	// storeEntries tracks the current number of cached entries.
	storeEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cms_cache_entries",
			Help: "Current number of cache entries held by the store",
		},
	)

	// invalidationsTotal tracks Invalidate calls.
	invalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_cache_invalidations_total",
			Help: "Total number of invalidation fan-outs",
		},
	)

	// entriesInvalidated tracks entries marked stale by invalidations.
	entriesInvalidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_cache_entries_invalidated_total",
			Help: "Total number of entries marked stale by invalidations",
		},
	)

	// refetchesTotal tracks background refreshes by trigger.
	refetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_cache_refetches_total",
			Help: "Total number of background refetches",
		},
		[]string{"trigger"}, // "invalidate", "subscribe"
	)

	// entriesEvicted tracks janitor evictions.
	entriesEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_cache_entries_evicted_total",
			Help: "Total number of idle entries evicted",
		},
	)

	// fetchErrorsTotal tracks failed fetches (the previous value survives).
	fetchErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_cache_fetch_errors_total",
			Help: "Total number of failed fetches recorded by the store",
		},
	)

	// subscriptionsActive tracks live subscriptions across all entries.
	subscriptionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cms_cache_subscriptions_active",
			Help: "Current number of active entry subscriptions",
		},
	)
)
