package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// NotificationsService manages the editor notification feed.
type NotificationsService struct {
	api *API
}

var notificationListQuery = Query[NotificationListParams, Page[Notification]]{
	Name: "notifications.list",
	Path: func(NotificationListParams) string { return "/notifications" },
	Params: func(p NotificationListParams) url.Values {
		return p.values()
	},
	Provides: func(page Page[Notification], _ NotificationListParams) []cache.Tag {
		return pageProvides(TypeNotification, page, func(n Notification) string { return n.ID })
	},
}

var unreadCountQuery = Query[struct{}, CountResult]{
	Name: "notifications.unreadCount",
	Path: func(struct{}) string { return "/notifications/unread-count" },
	Provides: func(CountResult, struct{}) []cache.Tag {
		return []cache.Tag{cache.UnreadCountTag(TypeNotification)}
	},
}

var markReadMutation = Mutation[string, Notification]{
	Name:   "notifications.markRead",
	Method: http.MethodPost,
	Path:   func(id string) string { return "/notifications/" + url.PathEscape(id) + "/read" },
	Invalidates: func(_ Notification, id string) []cache.Tag {
		return []cache.Tag{
			cache.ItemTag(TypeNotification, id),
			cache.ListTag(TypeNotification),
			cache.UnreadCountTag(TypeNotification),
		}
	},
}

var markAllReadMutation = Mutation[struct{}, struct{}]{
	Name:   "notifications.markAllRead",
	Method: http.MethodPost,
	Path:   func(struct{}) string { return "/notifications/read-all" },
	Invalidates: func(struct{}, struct{}) []cache.Tag {
		return []cache.Tag{
			cache.ListTag(TypeNotification),
			cache.UnreadCountTag(TypeNotification),
		}
	},
}

// List returns the notification feed.
func (s *NotificationsService) List(ctx context.Context, token string, params NotificationListParams) (Page[Notification], error) {
	return RunQuery(ctx, s.api, notificationListQuery, params, token)
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationsService) UnreadCount(ctx context.Context, token string) (CountResult, error) {
	return RunQuery(ctx, s.api, unreadCountQuery, struct{}{}, token)
}

// MarkRead marks one notification as read.
func (s *NotificationsService) MarkRead(ctx context.Context, token, id string) (Notification, error) {
	return RunMutation(ctx, s.api, markReadMutation, id, token)
}

// MarkAllRead marks the whole feed as read.
func (s *NotificationsService) MarkAllRead(ctx context.Context, token string) error {
	_, err := RunMutation(ctx, s.api, markAllReadMutation, struct{}{}, token)
	return err
}

// SubscribeUnreadCount keeps the unread counter entry live while an event
// stream is open, so counter invalidations refetch immediately instead of
// waiting for the next poll.
func (s *NotificationsService) SubscribeUnreadCount(token string) func() {
	return Subscribe(s.api, unreadCountQuery, struct{}{}, token)
}

// Invalidate marks arbitrary tags stale. The stream relay uses it when a
// pushed event announces new data for this principal.
func (s *NotificationsService) Invalidate(tags ...cache.Tag) int {
	return s.api.store.Invalidate(tags)
}
