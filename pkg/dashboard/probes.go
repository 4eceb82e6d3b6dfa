package dashboard

import (
	"context"

	"github.com/tourwise/cms-client/pkg/resources"
)

// countPage is the cheapest list read that still reports the total.
var countPage = resources.ListParams{Page: 1, Limit: 1}

// StandardProbes builds the default dashboard probe set on top of the
// resource services. Every figure goes through the cache, so a dashboard
// refresh right after a mutation sees the invalidated entries refetch.
func StandardProbes(api *resources.API, token string) []Probe {
	return []Probe{
		{
			Name: "posts",
			Fetch: func(ctx context.Context) (int, error) {
				page, err := api.Posts.List(ctx, token, resources.PostListParams{ListParams: countPage})
				return page.Total, err
			},
			Apply: func(s *Stats, value int) { s.Posts = value },
		},
		{
			Name: "pending_comments",
			Fetch: func(ctx context.Context) (int, error) {
				count, err := api.Comments.PendingCount(ctx, token)
				return count.Count, err
			},
			Apply: func(s *Stats, value int) { s.PendingComments = value },
		},
		{
			Name: "hotels",
			Fetch: func(ctx context.Context) (int, error) {
				page, err := api.Hotels.List(ctx, token, resources.HotelListParams{ListParams: countPage})
				return page.Total, err
			},
			Apply: func(s *Stats, value int) { s.Hotels = value },
		},
		{
			Name: "events",
			Fetch: func(ctx context.Context) (int, error) {
				page, err := api.Events.List(ctx, token, resources.EventListParams{ListParams: countPage})
				return page.Total, err
			},
			Apply: func(s *Stats, value int) { s.Events = value },
		},
		{
			Name: "activities",
			Fetch: func(ctx context.Context) (int, error) {
				page, err := api.Activities.List(ctx, token, resources.ActivityListParams{ListParams: countPage})
				return page.Total, err
			},
			Apply: func(s *Stats, value int) { s.Activities = value },
		},
		{
			Name: "regions",
			Fetch: func(ctx context.Context) (int, error) {
				page, err := api.Regions.List(ctx, token, countPage)
				return page.Total, err
			},
			Apply: func(s *Stats, value int) { s.Regions = value },
		},
		{
			Name: "hero_slides",
			Fetch: func(ctx context.Context) (int, error) {
				page, err := api.HeroSlides.List(ctx, token, countPage)
				return page.Total, err
			},
			Apply: func(s *Stats, value int) { s.HeroSlides = value },
		},
		{
			Name: "unread_notifications",
			Fetch: func(ctx context.Context) (int, error) {
				count, err := api.Notifications.UnreadCount(ctx, token)
				return count.Count, err
			},
			Apply: func(s *Stats, value int) { s.UnreadNotifications = value },
		},
		{
			Name: "total_views",
			Fetch: func(ctx context.Context) (int, error) {
				page, err := api.Views.List(ctx, token, resources.ViewListParams{ListParams: countPage})
				return page.Total, err
			},
			Apply: func(s *Stats, value int) { s.TotalViews = value },
		},
	}
}
