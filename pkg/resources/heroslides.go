package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// HeroSlidesService manages the landing-page carousel.
type HeroSlidesService struct {
	api *API
}

var heroSlideListQuery = Query[ListParams, Page[HeroSlide]]{
	Name: "heroSlides.list",
	Path: func(ListParams) string { return "/hero-slides" },
	Params: func(p ListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[HeroSlide], _ ListParams) []cache.Tag {
		return pageProvides(TypeHeroSlide, page, func(h HeroSlide) string { return h.ID })
	},
}

var heroSlideCreateMutation = Mutation[HeroSlideInput, HeroSlide]{
	Name:   "heroSlides.create",
	Method: http.MethodPost,
	Path:   func(HeroSlideInput) string { return "/hero-slides" },
	Body:   func(in HeroSlideInput) interface{} { return in },
	Invalidates: func(HeroSlide, HeroSlideInput) []cache.Tag {
		return []cache.Tag{cache.ListTag(TypeHeroSlide)}
	},
}

var heroSlideUpdateMutation = Mutation[crudUpdateArgs[HeroSlideInput], HeroSlide]{
	Name:   "heroSlides.update",
	Method: http.MethodPut,
	Path: func(a crudUpdateArgs[HeroSlideInput]) string {
		return "/hero-slides/" + url.PathEscape(a.ID)
	},
	Body: func(a crudUpdateArgs[HeroSlideInput]) interface{} { return a.Input },
	Invalidates: func(_ HeroSlide, a crudUpdateArgs[HeroSlideInput]) []cache.Tag {
		return itemWrites(TypeHeroSlide, a.ID, "")
	},
}

var heroSlideDeleteMutation = Mutation[string, struct{}]{
	Name:   "heroSlides.delete",
	Method: http.MethodDelete,
	Path:   func(id string) string { return "/hero-slides/" + url.PathEscape(id) },
	Invalidates: func(_ struct{}, id string) []cache.Tag {
		return itemWrites(TypeHeroSlide, id, "")
	},
}

type displayOrderArgs struct {
	ID    string
	Order int
}

var heroSlideOrderMutation = Mutation[displayOrderArgs, HeroSlide]{
	Name:   "heroSlides.setDisplayOrder",
	Method: http.MethodPut,
	Path: func(a displayOrderArgs) string {
		return "/hero-slides/" + url.PathEscape(a.ID) + "/display-order"
	},
	Body: func(a displayOrderArgs) interface{} {
		return map[string]int{"display_order": a.Order}
	},
	Invalidates: func(_ HeroSlide, a displayOrderArgs) []cache.Tag {
		// Reordering one slide changes the whole carousel's order.
		return itemWrites(TypeHeroSlide, a.ID, "")
	},
}

// List returns the carousel slides in display order.
func (s *HeroSlidesService) List(ctx context.Context, token string, params ListParams) (Page[HeroSlide], error) {
	return RunQuery(ctx, s.api, heroSlideListQuery, params, token)
}

// Create stores a new slide.
func (s *HeroSlidesService) Create(ctx context.Context, token string, in HeroSlideInput) (HeroSlide, error) {
	return RunMutation(ctx, s.api, heroSlideCreateMutation, in, token)
}

// Update rewrites an existing slide.
func (s *HeroSlidesService) Update(ctx context.Context, token, id string, in HeroSlideInput) (HeroSlide, error) {
	return RunMutation(ctx, s.api, heroSlideUpdateMutation, crudUpdateArgs[HeroSlideInput]{ID: id, Input: in}, token)
}

// Delete removes a slide.
func (s *HeroSlidesService) Delete(ctx context.Context, token, id string) error {
	_, err := RunMutation(ctx, s.api, heroSlideDeleteMutation, id, token)
	return err
}

// SetDisplayOrder moves a slide to a new position in the carousel.
func (s *HeroSlidesService) SetDisplayOrder(ctx context.Context, token, id string, order int) (HeroSlide, error) {
	return RunMutation(ctx, s.api, heroSlideOrderMutation, displayOrderArgs{ID: id, Order: order}, token)
}
