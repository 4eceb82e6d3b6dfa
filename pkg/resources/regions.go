package resources

import (
	"context"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// RegionsService manages destination areas.
type RegionsService struct {
	api *API
}

var regionCRUD = newCRUD[Region, RegionInput](TypeRegion, "/regions",
	func(r Region) string { return r.ID },
	func(r Region) string { return r.Slug })

var regionListQuery = Query[ListParams, Page[Region]]{
	Name: "regions.list",
	Path: func(ListParams) string { return "/regions" },
	Params: func(p ListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[Region], _ ListParams) []cache.Tag {
		return pageProvides(TypeRegion, page, func(r Region) string { return r.ID })
	},
}

// List returns a page of regions.
func (s *RegionsService) List(ctx context.Context, token string, params ListParams) (Page[Region], error) {
	return RunQuery(ctx, s.api, regionListQuery, params, token)
}

// Get returns a single region by id or slug.
func (s *RegionsService) Get(ctx context.Context, token, idOrSlug string) (Region, error) {
	return RunQuery(ctx, s.api, regionCRUD.get, idOrSlug, token)
}

// Create stores a new region.
func (s *RegionsService) Create(ctx context.Context, token string, in RegionInput) (Region, error) {
	return RunMutation(ctx, s.api, regionCRUD.create, in, token)
}

// Update rewrites an existing region.
func (s *RegionsService) Update(ctx context.Context, token, id string, in RegionInput) (Region, error) {
	return RunMutation(ctx, s.api, regionCRUD.update, crudUpdateArgs[RegionInput]{ID: id, Input: in}, token)
}

// Delete removes a region.
func (s *RegionsService) Delete(ctx context.Context, token, id string) error {
	_, err := RunMutation(ctx, s.api, regionCRUD.remove, id, token)
	return err
}
