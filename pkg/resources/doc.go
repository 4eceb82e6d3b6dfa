// Package resources declares, per backend resource type, the mapping from
// operation to HTTP call and to cache tags.
//
// Every read is described by a Query and every write by a Mutation. The
// descriptors are plain values whose Provides and Invalidates functions are
// pure (result and arguments in, tags out), so the tag rules can be tested
// without any network or store.
//
// # Tag discipline
//
// Queries declare the tags their cached result provides, typically the
// collection sentinel plus one item tag per row, so both list views and
// detail views are addressable. Mutations declare a superset of the tags
// they could have changed. Under-declaring causes stale reads; over-declaring
// only costs extra refetches, so when a mutation's result does not disclose
// which collections it touched (a delete with an empty body, a batch
// operation), the descriptor falls back to the coarse collection sentinels
// instead of skipping invalidation.
//
// # Enrichment
//
// Post payloads carry a free-form content object alongside the named
// columns. EnrichPost flattens it into the typed fields once, at the
// transform boundary, so cached data is already end-user shaped. The store
// never enriches.
//
// Usage:
//
//	api := resources.New(httpClient, store)
//	page, err := api.Posts.List(ctx, token, resources.PostListParams{Status: "published"})
//	_, err = api.Comments.Approve(ctx, token, commentID)
package resources
