// Package metrics provides the centralized Prometheus registry for the CMS
// client. All metrics are defined in their respective packages (client,
// cache, session, relay) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the CMS client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - cms_client_requests_total{endpoint, method, status} (Counter): Backend requests
//   - cms_client_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - cms_client_errors_total{class} (Counter): Failures by class (transport, auth, client, server)
//   - cms_client_token_refreshes_total (Counter): Anti-forgery token warm-up calls
//   - cms_client_stale_token_retries_total (Counter): Mutations retried after a stale-token 403
//
// Cache Metrics (pkg/cache):
//   - cms_cache_hits_total (Counter): Reads served from a fresh entry
//   - cms_cache_misses_total (Counter): Reads that required a backend fetch
//   - cms_cache_entries (Gauge): Entries currently held by the store
//   - cms_cache_invalidations_total (Counter): Invalidation fan-outs
//   - cms_cache_entries_invalidated_total (Counter): Entries marked stale by invalidations
//   - cms_cache_refetches_total{trigger} (Counter): Background refetches (invalidate, subscribe)
//   - cms_cache_entries_evicted_total (Counter): Idle entries evicted by the janitor
//   - cms_cache_fetch_errors_total (Counter): Failed fetches where the previous value survived
//   - cms_cache_subscriptions_active (Gauge): Live entry subscriptions
//
// Session Metrics (pkg/session):
//   - cms_session_cache_hits_total (Counter): Verifications served from Redis
//   - cms_session_cache_misses_total (Counter): Verifications that called the auth service
//   - cms_session_cache_errors_total{operation} (Counter): Session cache operation errors
//
// Relay Metrics (pkg/relay):
//   - cms_relay_streams_active (Gauge): Event streams currently being relayed
//   - cms_relay_streams_total{outcome} (Counter): Finished streams by outcome
//   - cms_relay_bytes_total (Counter): Bytes copied from upstream to clients
//   - cms_relay_events_total{event} (Counter): Named events relayed downstream
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(cms_cache_hits_total[5m])) /
//   (sum(rate(cms_cache_hits_total[5m])) + sum(rate(cms_cache_misses_total[5m])))
//
//   # Stale Reads Waiting on a Refetch
//   rate(cms_cache_refetches_total{trigger="invalidate"}[5m])
//
//   # Request Error Rate
//   rate(cms_client_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(cms_client_request_duration_seconds_bucket[5m]))
//
//   # Streams Dropped by Upstream
//   rate(cms_relay_streams_total{outcome="upstream_ended"}[5m])
