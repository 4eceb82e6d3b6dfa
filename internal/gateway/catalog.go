package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/pkg/resources"
)

// Handlers for the catalog resources: hotels, tags, events, activities and
// regions. They share the CRUD shape; only the list filters differ.

func (s *Server) handleListHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := resources.HotelListParams{
		ListParams: parseListParams(r),
		Region:     q.Get("region"),
		Stars:      queryInt(r, "stars"),
		Search:     q.Get("search"),
	}

	page, err := s.api.Hotels.List(r.Context(), sessionToken(r.Context()), params)
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleGetHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := s.api.Hotels.Get(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "idOrSlug"))
	if err != nil && hotel.ID == "" {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, hotel, err)
}

func (s *Server) handleCreateHotel(w http.ResponseWriter, r *http.Request) {
	var in resources.HotelInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	hotel, err := s.api.Hotels.Create(r.Context(), sessionToken(r.Context()), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Created(w, hotel)
}

func (s *Server) handleUpdateHotel(w http.ResponseWriter, r *http.Request) {
	var in resources.HotelInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	hotel, err := s.api.Hotels.Update(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, hotel)
}

func (s *Server) handleDeleteHotel(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Hotels.Delete(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	page, err := s.api.Tags.List(r.Context(), sessionToken(r.Context()), parseListParams(r))
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := s.api.Tags.Get(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "idOrSlug"))
	if err != nil && tag.ID == "" {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, tag, err)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in resources.TagInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	tag, err := s.api.Tags.Create(r.Context(), sessionToken(r.Context()), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Created(w, tag)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	var in resources.TagInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	tag, err := s.api.Tags.Update(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Tags.Delete(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	params := resources.EventListParams{
		ListParams: parseListParams(r),
		Region:     r.URL.Query().Get("region"),
		Upcoming:   queryBool(r, "upcoming"),
	}

	page, err := s.api.Events.List(r.Context(), sessionToken(r.Context()), params)
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.api.Events.Get(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "idOrSlug"))
	if err != nil && event.ID == "" {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, event, err)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in resources.EventInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	event, err := s.api.Events.Create(r.Context(), sessionToken(r.Context()), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Created(w, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in resources.EventInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	event, err := s.api.Events.Update(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Events.Delete(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := resources.ActivityListParams{
		ListParams: parseListParams(r),
		Region:     q.Get("region"),
		Search:     q.Get("search"),
	}

	page, err := s.api.Activities.List(r.Context(), sessionToken(r.Context()), params)
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.api.Activities.Get(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "idOrSlug"))
	if err != nil && activity.ID == "" {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, activity, err)
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var in resources.ActivityInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	activity, err := s.api.Activities.Create(r.Context(), sessionToken(r.Context()), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Created(w, activity)
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	var in resources.ActivityInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	activity, err := s.api.Activities.Update(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, activity)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Activities.Delete(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleListRegions(w http.ResponseWriter, r *http.Request) {
	page, err := s.api.Regions.List(r.Context(), sessionToken(r.Context()), parseListParams(r))
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleGetRegion(w http.ResponseWriter, r *http.Request) {
	region, err := s.api.Regions.Get(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "idOrSlug"))
	if err != nil && region.ID == "" {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, region, err)
}

func (s *Server) handleCreateRegion(w http.ResponseWriter, r *http.Request) {
	var in resources.RegionInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	region, err := s.api.Regions.Create(r.Context(), sessionToken(r.Context()), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Created(w, region)
}

func (s *Server) handleUpdateRegion(w http.ResponseWriter, r *http.Request) {
	var in resources.RegionInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	region, err := s.api.Regions.Update(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, region)
}

func (s *Server) handleDeleteRegion(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Regions.Delete(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}
