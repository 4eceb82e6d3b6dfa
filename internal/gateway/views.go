package gateway

import (
	"net/http"

	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/pkg/resources"
)

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := resources.ViewListParams{
		ListParams: parseListParams(r),
		TargetType: q.Get("target_type"),
		TargetID:   q.Get("target_id"),
	}

	page, err := s.api.Views.List(r.Context(), sessionToken(r.Context()), params)
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleRecordView(w http.ResponseWriter, r *http.Request) {
	var in resources.ViewInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	if err := s.api.Views.Record(r.Context(), sessionToken(r.Context()), in); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}
