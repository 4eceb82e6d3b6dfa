package resources

import (
	"context"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// ActivitiesService manages things to do.
type ActivitiesService struct {
	api *API
}

var activityCRUD = newCRUD[Activity, ActivityInput](TypeActivity, "/activities",
	func(a Activity) string { return a.ID },
	func(a Activity) string { return a.Slug })

var activityListQuery = Query[ActivityListParams, Page[Activity]]{
	Name: "activities.list",
	Path: func(ActivityListParams) string { return "/activities" },
	Params: func(p ActivityListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[Activity], _ ActivityListParams) []cache.Tag {
		return pageProvides(TypeActivity, page, func(a Activity) string { return a.ID })
	},
}

// List returns a page of activities matching the filters.
func (s *ActivitiesService) List(ctx context.Context, token string, params ActivityListParams) (Page[Activity], error) {
	return RunQuery(ctx, s.api, activityListQuery, params, token)
}

// Get returns a single activity by id or slug.
func (s *ActivitiesService) Get(ctx context.Context, token, idOrSlug string) (Activity, error) {
	return RunQuery(ctx, s.api, activityCRUD.get, idOrSlug, token)
}

// Create stores a new activity.
func (s *ActivitiesService) Create(ctx context.Context, token string, in ActivityInput) (Activity, error) {
	return RunMutation(ctx, s.api, activityCRUD.create, in, token)
}

// Update rewrites an existing activity.
func (s *ActivitiesService) Update(ctx context.Context, token, id string, in ActivityInput) (Activity, error) {
	return RunMutation(ctx, s.api, activityCRUD.update, crudUpdateArgs[ActivityInput]{ID: id, Input: in}, token)
}

// Delete removes an activity.
func (s *ActivitiesService) Delete(ctx context.Context, token, id string) error {
	_, err := RunMutation(ctx, s.api, activityCRUD.remove, id, token)
	return err
}
