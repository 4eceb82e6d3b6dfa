package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// PostsService manages blog and guide articles.
type PostsService struct {
	api *API
}

var postListQuery = Query[PostListParams, Page[Post]]{
	Name: "posts.list",
	Path: func(PostListParams) string { return "/posts" },
	Params: func(p PostListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[Post], _ PostListParams) []cache.Tag {
		return pageProvides(TypePost, page, func(p Post) string { return p.ID })
	},
	Transform: enrichPostPage,
}

var postGetQuery = Query[string, Post]{
	Name: "posts.get",
	Path: func(idOrSlug string) string { return "/posts/" + url.PathEscape(idOrSlug) },
	Provides: func(p Post, arg string) []cache.Tag {
		return detailProvides(TypePost, arg, p.ID, p.Slug)
	},
	Transform: EnrichPost,
}

var postCreateMutation = Mutation[PostInput, Post]{
	Name:   "posts.create",
	Method: http.MethodPost,
	Path:   func(PostInput) string { return "/posts" },
	Body:   func(in PostInput) interface{} { return in },
	Invalidates: func(Post, PostInput) []cache.Tag {
		return []cache.Tag{cache.ListTag(TypePost)}
	},
	Transform: EnrichPost,
}

type postUpdateArgs struct {
	ID    string
	Input PostInput
}

var postUpdateMutation = Mutation[postUpdateArgs, Post]{
	Name:   "posts.update",
	Method: http.MethodPut,
	Path:   func(a postUpdateArgs) string { return "/posts/" + url.PathEscape(a.ID) },
	Body:   func(a postUpdateArgs) interface{} { return a.Input },
	Invalidates: func(p Post, a postUpdateArgs) []cache.Tag {
		return itemWrites(TypePost, a.ID, p.Slug)
	},
	Transform: EnrichPost,
}

var postDeleteMutation = Mutation[string, struct{}]{
	Name:   "posts.delete",
	Method: http.MethodDelete,
	Path:   func(id string) string { return "/posts/" + url.PathEscape(id) },
	Invalidates: func(_ struct{}, id string) []cache.Tag {
		// The body is empty, so the slug is unknown. The id tag still covers
		// slug-keyed detail entries because they provide their canonical id.
		return itemWrites(TypePost, id, "")
	},
}

var postPublishMutation = Mutation[string, Post]{
	Name:   "posts.publish",
	Method: http.MethodPost,
	Path:   func(id string) string { return "/posts/" + url.PathEscape(id) + "/publish" },
	Invalidates: func(p Post, id string) []cache.Tag {
		return itemWrites(TypePost, id, p.Slug)
	},
	Transform: EnrichPost,
}

var postUnpublishMutation = Mutation[string, Post]{
	Name:   "posts.unpublish",
	Method: http.MethodPost,
	Path:   func(id string) string { return "/posts/" + url.PathEscape(id) + "/unpublish" },
	Invalidates: func(p Post, id string) []cache.Tag {
		return itemWrites(TypePost, id, p.Slug)
	},
	Transform: EnrichPost,
}

// List returns a page of posts matching the filters.
func (s *PostsService) List(ctx context.Context, token string, params PostListParams) (Page[Post], error) {
	return RunQuery(ctx, s.api, postListQuery, params, token)
}

// Get returns a single post by id or slug.
func (s *PostsService) Get(ctx context.Context, token, idOrSlug string) (Post, error) {
	return RunQuery(ctx, s.api, postGetQuery, idOrSlug, token)
}

// Create stores a new post.
func (s *PostsService) Create(ctx context.Context, token string, in PostInput) (Post, error) {
	return RunMutation(ctx, s.api, postCreateMutation, in, token)
}

// Update rewrites an existing post.
func (s *PostsService) Update(ctx context.Context, token, id string, in PostInput) (Post, error) {
	return RunMutation(ctx, s.api, postUpdateMutation, postUpdateArgs{ID: id, Input: in}, token)
}

// Delete removes a post.
func (s *PostsService) Delete(ctx context.Context, token, id string) error {
	_, err := RunMutation(ctx, s.api, postDeleteMutation, id, token)
	return err
}

// Publish makes a draft post publicly visible.
func (s *PostsService) Publish(ctx context.Context, token, id string) (Post, error) {
	return RunMutation(ctx, s.api, postPublishMutation, id, token)
}

// Unpublish takes a published post back to draft.
func (s *PostsService) Unpublish(ctx context.Context, token, id string) (Post, error) {
	return RunMutation(ctx, s.api, postUnpublishMutation, id, token)
}
