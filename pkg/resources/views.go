package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// ViewsService records and lists page views.
type ViewsService struct {
	api *API
}

var viewListQuery = Query[ViewListParams, Page[View]]{
	Name: "views.list",
	Path: func(ViewListParams) string { return "/views" },
	Params: func(p ViewListParams) url.Values {
		return p.values()
	},
	Provides: func(_ Page[View], _ ViewListParams) []cache.Tag {
		// View rows are write-once and never individually addressed.
		return []cache.Tag{cache.ListTag(TypeView)}
	},
}

var viewRecordMutation = Mutation[ViewInput, struct{}]{
	Name:   "views.record",
	Method: http.MethodPost,
	Path:   func(ViewInput) string { return "/views" },
	Body:   func(in ViewInput) interface{} { return in },
	Invalidates: func(_ struct{}, _ ViewInput) []cache.Tag {
		// Deliberately coarse. Per-post view counters catch up through
		// their own collection's invalidation cycle.
		return []cache.Tag{cache.ListTag(TypeView)}
	},
}

// List returns recorded views, filterable by target.
func (s *ViewsService) List(ctx context.Context, token string, params ViewListParams) (Page[View], error) {
	return RunQuery(ctx, s.api, viewListQuery, params, token)
}

// Record stores one page view.
func (s *ViewsService) Record(ctx context.Context, token string, in ViewInput) error {
	_, err := RunMutation(ctx, s.api, viewRecordMutation, in, token)
	return err
}
