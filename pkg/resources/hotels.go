package resources

import (
	"context"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// HotelsService manages accommodation listings.
type HotelsService struct {
	api *API
}

var hotelCRUD = newCRUD[Hotel, HotelInput](TypeHotel, "/hotels",
	func(h Hotel) string { return h.ID },
	func(h Hotel) string { return h.Slug })

var hotelListQuery = Query[HotelListParams, Page[Hotel]]{
	Name: "hotels.list",
	Path: func(HotelListParams) string { return "/hotels" },
	Params: func(p HotelListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[Hotel], _ HotelListParams) []cache.Tag {
		return pageProvides(TypeHotel, page, func(h Hotel) string { return h.ID })
	},
}

// List returns a page of hotels matching the filters.
func (s *HotelsService) List(ctx context.Context, token string, params HotelListParams) (Page[Hotel], error) {
	return RunQuery(ctx, s.api, hotelListQuery, params, token)
}

// Get returns a single hotel by id or slug.
func (s *HotelsService) Get(ctx context.Context, token, idOrSlug string) (Hotel, error) {
	return RunQuery(ctx, s.api, hotelCRUD.get, idOrSlug, token)
}

// Create stores a new hotel.
func (s *HotelsService) Create(ctx context.Context, token string, in HotelInput) (Hotel, error) {
	return RunMutation(ctx, s.api, hotelCRUD.create, in, token)
}

// Update rewrites an existing hotel.
func (s *HotelsService) Update(ctx context.Context, token, id string, in HotelInput) (Hotel, error) {
	return RunMutation(ctx, s.api, hotelCRUD.update, crudUpdateArgs[HotelInput]{ID: id, Input: in}, token)
}

// Delete removes a hotel.
func (s *HotelsService) Delete(ctx context.Context, token, id string) error {
	_, err := RunMutation(ctx, s.api, hotelCRUD.remove, id, token)
	return err
}
