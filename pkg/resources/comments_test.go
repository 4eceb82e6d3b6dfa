package resources

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourwise/cms-client/pkg/cache"
)

func TestCommentCreateInvalidates(t *testing.T) {
	in := CommentInput{TargetType: "post", TargetID: "abc123", Body: "hi"}
	result := Comment{ID: "c9", TargetType: "post", TargetID: "abc123", Status: CommentPending}

	tags := commentCreateMutation.Invalidates(result, in)

	assert.ElementsMatch(t, []cache.Tag{
		cache.ModerationTag(TypeComment),
		cache.PendingCountTag(TypeComment),
	}, tags)
	assert.NotContains(t, tags, cache.ContentTag(TypeComment, "post", "abc123"),
		"a pending comment is invisible to the public list")
}

func TestCommentDecisionInvalidates_WithTarget(t *testing.T) {
	result := Comment{ID: "c2", TargetType: "post", TargetID: "abc123", Status: CommentApproved}

	tags := commentDecisionInvalidates(result, "c2")

	assert.ElementsMatch(t, []cache.Tag{
		cache.ItemTag(TypeComment, "c2"),
		cache.ModerationTag(TypeComment),
		cache.PendingCountTag(TypeComment),
		cache.ContentTag(TypeComment, "post", "abc123"),
	}, tags)
}

func TestCommentDecisionInvalidates_WithoutTarget(t *testing.T) {
	// The backend answered without a body, so the affected content list is
	// unknown. The coarse sentinel stands in rather than skipping.
	tags := commentDecisionInvalidates(Comment{}, "c2")

	assert.Contains(t, tags, cache.ListTag(TypeComment))
	assert.Contains(t, tags, cache.ItemTag(TypeComment, "c2"))
}

func TestCommentDeleteInvalidates(t *testing.T) {
	tags := commentDeleteMutation.Invalidates(struct{}{}, "c2")

	assert.ElementsMatch(t, []cache.Tag{
		cache.ItemTag(TypeComment, "c2"),
		cache.ListTag(TypeComment),
		cache.ModerationTag(TypeComment),
		cache.PendingCountTag(TypeComment),
	}, tags)
}

func TestCommentBatchInvalidatesCoarseOnly(t *testing.T) {
	args := batchArgs{IDs: []string{"c1", "c2", "c3"}}

	for _, m := range []Mutation[batchArgs, BatchResult]{
		commentBatchApproveMutation,
		commentBatchDeleteMutation,
	} {
		tags := m.Invalidates(BatchResult{Affected: 3}, args)

		assert.ElementsMatch(t, []cache.Tag{
			cache.ListTag(TypeComment),
			cache.ModerationTag(TypeComment),
			cache.PendingCountTag(TypeComment),
		}, tags, "%s must not attempt per-item precision", m.Name)
	}
}

func TestCommentListProvides_IncludesModeration(t *testing.T) {
	page := Page[Comment]{Data: []Comment{{ID: "c1"}}}

	tags := commentListQuery.Provides(page, CommentListParams{})

	assert.Contains(t, tags, cache.ModerationTag(TypeComment))
	assert.Contains(t, tags, cache.ListTag(TypeComment))
	assert.Contains(t, tags, cache.ItemTag(TypeComment, "c1"))
}

// A freshly created comment sits in the moderation queue; the public list of
// its target content must keep serving its cached page without a refetch.
func TestCreatePendingComment_LeavesPublicListUntouched(t *testing.T) {
	api, mux := newTestAPI(t)

	var listFetches atomic.Int32
	var pendingCount atomic.Int32
	pendingCount.Store(3)

	mux.HandleFunc("/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listFetches.Add(1)
			writeJSON(t, w, Page[Comment]{
				Data:  []Comment{{ID: "c1", TargetType: "post", TargetID: "abc123", Status: CommentApproved}},
				Total: 1,
			})
		case http.MethodPost:
			pendingCount.Add(1)
			writeJSON(t, w, Comment{ID: "c9", TargetType: "post", TargetID: "abc123", Status: CommentPending})
		}
	})
	mux.HandleFunc("/comments/pending-count", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, CountResult{Count: int(pendingCount.Load())})
	})

	ctx := context.Background()
	params := ContentCommentsParams{TargetType: "post", TargetID: "abc123"}

	first, err := api.Comments.ListForContent(ctx, "tok", params)
	require.NoError(t, err)
	require.Len(t, first.Data, 1)

	count, err := api.Comments.PendingCount(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, 3, count.Count)

	created, err := api.Comments.Create(ctx, "tok", CommentInput{
		TargetType: "post", TargetID: "abc123", AuthorName: "visitor", Body: "nice post",
	})
	require.NoError(t, err)
	require.Equal(t, CommentPending, created.Status)

	listSig := signatureFor(contentCommentsQuery, params, "tok")
	info, ok := api.store.Peek(listSig)
	require.True(t, ok)
	assert.True(t, info.Fresh, "the public list must stay fresh")

	countSig := signatureFor(pendingCountQuery, struct{}{}, "tok")
	info, ok = api.store.Peek(countSig)
	require.True(t, ok)
	assert.False(t, info.Fresh, "the pending counter must be stale")

	// Reading the public list again is a pure cache hit with unchanged data.
	second, err := api.Comments.ListForContent(ctx, "tok", params)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), listFetches.Load())

	// The counter refetches and sees the new pending comment.
	count, err = api.Comments.PendingCount(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 4, count.Count)
}

// Approving a comment must invalidate its target's content tag so an open
// public list for that post refetches and picks the comment up.
func TestApproveComment_RefreshesOpenPublicList(t *testing.T) {
	api, mux := newTestAPI(t)

	var approved atomic.Bool
	var listFetches atomic.Int32

	mux.HandleFunc("/comments", func(w http.ResponseWriter, r *http.Request) {
		listFetches.Add(1)
		rows := []Comment{{ID: "c1", TargetType: "post", TargetID: "abc123", Status: CommentApproved}}
		if approved.Load() {
			rows = append(rows, Comment{ID: "c2", TargetType: "post", TargetID: "abc123", Status: CommentApproved})
		}
		writeJSON(t, w, Page[Comment]{Data: rows, Total: len(rows)})
	})
	mux.HandleFunc("/comments/c2/approve", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		approved.Store(true)
		writeJSON(t, w, Comment{ID: "c2", TargetType: "post", TargetID: "abc123", Status: CommentApproved})
	})

	ctx := context.Background()
	params := ContentCommentsParams{TargetType: "post", TargetID: "abc123"}

	first, err := api.Comments.ListForContent(ctx, "tok", params)
	require.NoError(t, err)
	require.Len(t, first.Data, 1)

	// The list is open in a view, so it holds a subscription.
	release := Subscribe(api, contentCommentsQuery, params, "tok")
	defer release()

	_, err = api.Comments.Approve(ctx, "tok", "c2")
	require.NoError(t, err)

	sig := signatureFor(contentCommentsQuery, params, "tok")
	assert.Eventually(t, func() bool {
		info, ok := api.store.Peek(sig)
		return ok && info.Fresh && listFetches.Load() == 2
	}, 2*time.Second, 10*time.Millisecond, "the subscribed list must refetch on its own")

	refreshed, err := api.Comments.ListForContent(ctx, "tok", params)
	require.NoError(t, err)
	assert.Len(t, refreshed.Data, 2, "the approved comment must now be visible")
	assert.Equal(t, int32(2), listFetches.Load(), "the refreshed page is served from cache")
}
