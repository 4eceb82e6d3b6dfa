package resources

import (
	"context"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// TagsService manages editorial tags.
type TagsService struct {
	api *API
}

var tagCRUD = newCRUD[Tag, TagInput](TypeTag, "/tags",
	func(t Tag) string { return t.ID },
	func(t Tag) string { return t.Slug })

var tagListQuery = Query[ListParams, Page[Tag]]{
	Name: "tags.list",
	Path: func(ListParams) string { return "/tags" },
	Params: func(p ListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[Tag], _ ListParams) []cache.Tag {
		return pageProvides(TypeTag, page, func(t Tag) string { return t.ID })
	},
}

// List returns a page of editorial tags.
func (s *TagsService) List(ctx context.Context, token string, params ListParams) (Page[Tag], error) {
	return RunQuery(ctx, s.api, tagListQuery, params, token)
}

// Get returns a single tag by id or slug.
func (s *TagsService) Get(ctx context.Context, token, idOrSlug string) (Tag, error) {
	return RunQuery(ctx, s.api, tagCRUD.get, idOrSlug, token)
}

// Create stores a new tag.
func (s *TagsService) Create(ctx context.Context, token string, in TagInput) (Tag, error) {
	return RunMutation(ctx, s.api, tagCRUD.create, in, token)
}

// Update renames an existing tag.
func (s *TagsService) Update(ctx context.Context, token, id string, in TagInput) (Tag, error) {
	return RunMutation(ctx, s.api, tagCRUD.update, crudUpdateArgs[TagInput]{ID: id, Input: in}, token)
}

// Delete removes a tag.
func (s *TagsService) Delete(ctx context.Context, token, id string) error {
	_, err := RunMutation(ctx, s.api, tagCRUD.remove, id, token)
	return err
}
