package resources

import (
	"context"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// EventsService manages scheduled happenings.
type EventsService struct {
	api *API
}

var eventCRUD = newCRUD[Event, EventInput](TypeEvent, "/events",
	func(e Event) string { return e.ID },
	func(e Event) string { return e.Slug })

var eventListQuery = Query[EventListParams, Page[Event]]{
	Name: "events.list",
	Path: func(EventListParams) string { return "/events" },
	Params: func(p EventListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[Event], _ EventListParams) []cache.Tag {
		return pageProvides(TypeEvent, page, func(e Event) string { return e.ID })
	},
}

// List returns a page of events matching the filters.
func (s *EventsService) List(ctx context.Context, token string, params EventListParams) (Page[Event], error) {
	return RunQuery(ctx, s.api, eventListQuery, params, token)
}

// Get returns a single event by id or slug.
func (s *EventsService) Get(ctx context.Context, token, idOrSlug string) (Event, error) {
	return RunQuery(ctx, s.api, eventCRUD.get, idOrSlug, token)
}

// Create stores a new event.
func (s *EventsService) Create(ctx context.Context, token string, in EventInput) (Event, error) {
	return RunMutation(ctx, s.api, eventCRUD.create, in, token)
}

// Update rewrites an existing event.
func (s *EventsService) Update(ctx context.Context, token, id string, in EventInput) (Event, error) {
	return RunMutation(ctx, s.api, eventCRUD.update, crudUpdateArgs[EventInput]{ID: id, Input: in}, token)
}

// Delete removes an event.
func (s *EventsService) Delete(ctx context.Context, token, id string) error {
	_, err := RunMutation(ctx, s.api, eventCRUD.remove, id, token)
	return err
}
