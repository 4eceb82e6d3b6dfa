package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// CommentsService manages visitor comments and the moderation queue.
//
// Tag rules are asymmetric on purpose. A new comment enters as pending and
// is not publicly visible, so creating one touches the moderation queue and
// the pending counter but leaves the public per-content lists alone. Only a
// moderation decision (approve, reject, spam) touches the content tag of the
// comment's target, which is what makes an open public comment list pick up
// a freshly approved comment.
type CommentsService struct {
	api *API
}

var commentListQuery = Query[CommentListParams, Page[Comment]]{
	Name: "comments.list",
	Path: func(CommentListParams) string { return "/comments" },
	Params: func(p CommentListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[Comment], _ CommentListParams) []cache.Tag {
		tags := pageProvides(TypeComment, page, func(c Comment) string { return c.ID })
		return append(tags, cache.ModerationTag(TypeComment))
	},
}

var contentCommentsQuery = Query[ContentCommentsParams, Page[Comment]]{
	Name: "comments.forContent",
	Path: func(ContentCommentsParams) string { return "/comments" },
	Params: func(p ContentCommentsParams) url.Values {
		v := p.values()
		v.Set("status", CommentApproved)
		return v
	},
	Provides: func(page Page[Comment], p ContentCommentsParams) []cache.Tag {
		tags := []cache.Tag{cache.ContentTag(TypeComment, p.TargetType, p.TargetID)}
		for _, c := range page.Data {
			tags = append(tags, cache.ItemTag(TypeComment, c.ID))
		}
		return tags
	},
}

var pendingCountQuery = Query[struct{}, CountResult]{
	Name: "comments.pendingCount",
	Path: func(struct{}) string { return "/comments/pending-count" },
	Provides: func(CountResult, struct{}) []cache.Tag {
		return []cache.Tag{cache.PendingCountTag(TypeComment)}
	},
}

var commentCreateMutation = Mutation[CommentInput, Comment]{
	Name:   "comments.create",
	Method: http.MethodPost,
	Path:   func(CommentInput) string { return "/comments" },
	Body:   func(in CommentInput) interface{} { return in },
	Invalidates: func(_ Comment, _ CommentInput) []cache.Tag {
		// Pending comments are invisible to the public lists, so the target
		// content tag stays untouched until a moderation decision.
		return []cache.Tag{
			cache.ModerationTag(TypeComment),
			cache.PendingCountTag(TypeComment),
		}
	},
}

// moderationDecision covers approve, reject and spam, which share their
// invalidation shape.
func moderationDecision(name, action string) Mutation[string, Comment] {
	return Mutation[string, Comment]{
		Name:   name,
		Method: http.MethodPost,
		Path: func(id string) string {
			return "/comments/" + url.PathEscape(id) + "/" + action
		},
		Invalidates: commentDecisionInvalidates,
	}
}

// commentDecisionInvalidates maps a moderation decision to its tags. When
// the result discloses the comment's target, the target's content tag is
// invalidated precisely; otherwise the coarse collection sentinel stands in,
// trading extra refetches for correctness.
func commentDecisionInvalidates(c Comment, id string) []cache.Tag {
	tags := []cache.Tag{
		cache.ItemTag(TypeComment, id),
		cache.ModerationTag(TypeComment),
		cache.PendingCountTag(TypeComment),
	}
	if c.TargetType != "" && c.TargetID != "" {
		return append(tags, cache.ContentTag(TypeComment, c.TargetType, c.TargetID))
	}
	return append(tags, cache.ListTag(TypeComment))
}

var (
	commentApproveMutation = moderationDecision("comments.approve", "approve")
	commentRejectMutation  = moderationDecision("comments.reject", "reject")
	commentSpamMutation    = moderationDecision("comments.spam", "spam")
)

var commentDeleteMutation = Mutation[string, struct{}]{
	Name:   "comments.delete",
	Method: http.MethodDelete,
	Path:   func(id string) string { return "/comments/" + url.PathEscape(id) },
	Invalidates: func(_ struct{}, id string) []cache.Tag {
		// An empty body cannot say which content list the comment sat on.
		// The item tag catches lists that held it; the sentinels catch the
		// rest.
		return []cache.Tag{
			cache.ItemTag(TypeComment, id),
			cache.ListTag(TypeComment),
			cache.ModerationTag(TypeComment),
			cache.PendingCountTag(TypeComment),
		}
	},
}

type batchArgs struct {
	IDs []string `json:"ids"`
}

// batchDecision builds a batch mutation. Batches touch multiple unknown
// collections, so they invalidate the same coarse tags as their single-item
// counterparts and skip per-item precision.
func batchDecision(name, action string) Mutation[batchArgs, BatchResult] {
	return Mutation[batchArgs, BatchResult]{
		Name:   name,
		Method: http.MethodPost,
		Path:   func(batchArgs) string { return "/comments/batch-" + action },
		Body:   func(a batchArgs) interface{} { return a },
		Invalidates: func(BatchResult, batchArgs) []cache.Tag {
			return []cache.Tag{
				cache.ListTag(TypeComment),
				cache.ModerationTag(TypeComment),
				cache.PendingCountTag(TypeComment),
			}
		},
	}
}

var (
	commentBatchApproveMutation = batchDecision("comments.batchApprove", "approve")
	commentBatchDeleteMutation  = batchDecision("comments.batchDelete", "delete")
)

// List returns the moderation queue, filterable by status.
func (s *CommentsService) List(ctx context.Context, token string, params CommentListParams) (Page[Comment], error) {
	return RunQuery(ctx, s.api, commentListQuery, params, token)
}

// ListForContent returns the approved comments of one piece of content.
func (s *CommentsService) ListForContent(ctx context.Context, token string, params ContentCommentsParams) (Page[Comment], error) {
	return RunQuery(ctx, s.api, contentCommentsQuery, params, token)
}

// PendingCount returns the number of comments awaiting moderation.
func (s *CommentsService) PendingCount(ctx context.Context, token string) (CountResult, error) {
	return RunQuery(ctx, s.api, pendingCountQuery, struct{}{}, token)
}

// Create submits a visitor comment. It enters the queue as pending.
func (s *CommentsService) Create(ctx context.Context, token string, in CommentInput) (Comment, error) {
	return RunMutation(ctx, s.api, commentCreateMutation, in, token)
}

// Approve makes a pending comment publicly visible.
func (s *CommentsService) Approve(ctx context.Context, token, id string) (Comment, error) {
	return RunMutation(ctx, s.api, commentApproveMutation, id, token)
}

// Reject hides a comment without deleting it.
func (s *CommentsService) Reject(ctx context.Context, token, id string) (Comment, error) {
	return RunMutation(ctx, s.api, commentRejectMutation, id, token)
}

// Spam marks a comment as spam.
func (s *CommentsService) Spam(ctx context.Context, token, id string) (Comment, error) {
	return RunMutation(ctx, s.api, commentSpamMutation, id, token)
}

// Delete removes a comment outright.
func (s *CommentsService) Delete(ctx context.Context, token, id string) error {
	_, err := RunMutation(ctx, s.api, commentDeleteMutation, id, token)
	return err
}

// BatchApprove approves a set of pending comments in one call.
func (s *CommentsService) BatchApprove(ctx context.Context, token string, ids []string) (BatchResult, error) {
	return RunMutation(ctx, s.api, commentBatchApproveMutation, batchArgs{IDs: ids}, token)
}

// BatchDelete removes a set of comments in one call.
func (s *CommentsService) BatchDelete(ctx context.Context, token string, ids []string) (BatchResult, error) {
	return RunMutation(ctx, s.api, commentBatchDeleteMutation, batchArgs{IDs: ids}, token)
}
