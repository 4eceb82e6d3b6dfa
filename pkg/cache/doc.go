// Package cache provides the tag-indexed read-through store backing the
// Tourwise CMS data layer.
//
// The store keeps one entry per canonical request signature and indexes every
// entry by the tags its value provides. Mutations invalidate by tag: every
// entry whose provided tags intersect the invalidated set is marked stale
// before the mutation returns, refetched immediately when it has active
// subscribers and lazily on the next read otherwise.
//
// # Basic Usage
//
//	store := cache.NewStore(cache.DefaultConfig())
//	defer store.Close()
//
//	sig := cache.NewSignature("/posts", url.Values{"page": {"1"}})
//
//	data, err := store.Read(ctx, sig, func(ctx context.Context) (json.RawMessage, []cache.Tag, error) {
//		posts, err := fetchPosts(ctx)
//		if err != nil {
//			return nil, nil, err
//		}
//		tags := []cache.Tag{cache.ListTag("post")}
//		for _, p := range posts {
//			tags = append(tags, cache.ItemTag("post", p.ID))
//		}
//		raw, _ := json.Marshal(posts)
//		return raw, tags, nil
//	})
//
// # Subscriptions
//
//	unsubscribe := store.Subscribe(sig)
//	defer unsubscribe()
//
// Subscribed entries are refetched in the background as soon as an
// invalidation marks them stale. Entries with zero subscribers stay stale
// until the next Read, and are evicted after the retention window.
//
// # Invalidation
//
//	store.Invalidate([]cache.Tag{
//		cache.ItemTag("post", "abc123"),
//		cache.ListTag("post"),
//	})
//
// Under-invalidating causes stale views; over-invalidating only costs extra
// backend calls. Mutations should declare a superset of the tags that could
// have changed.
//
// # Failure Semantics
//
// A failed fetch never clears an entry: the previous value is kept, the
// failure is recorded and returned alongside the last good data, so consumers
// can keep rendering while retrying.
//
// # Metrics
//
// The store exports Prometheus metrics:
//
//   - cms_cache_hits_total / cms_cache_misses_total
//   - cms_cache_entries
//   - cms_cache_invalidations_total / cms_cache_entries_invalidated_total
//   - cms_cache_refetches_total{trigger}
//   - cms_cache_entries_evicted_total
//   - cms_cache_fetch_errors_total
//   - cms_cache_subscriptions_active
package cache
