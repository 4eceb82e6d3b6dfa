package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/pkg/resources"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	params := resources.NotificationListParams{
		ListParams: parseListParams(r),
		UnreadOnly: queryBool(r, "unread"),
	}

	page, err := s.api.Notifications.List(r.Context(), sessionToken(r.Context()), params)
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.api.Notifications.UnreadCount(r.Context(), sessionToken(r.Context()))
	s.respondRead(w, count, err)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notification, err := s.api.Notifications.MarkRead(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, notification)
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Notifications.MarkAllRead(r.Context(), sessionToken(r.Context())); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}
