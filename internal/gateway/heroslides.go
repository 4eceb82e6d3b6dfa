package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/pkg/resources"
)

// displayOrderBody reorders one slide within the carousel.
type displayOrderBody struct {
	DisplayOrder int `json:"display_order" validate:"gte=0"`
}

func (s *Server) handleListHeroSlides(w http.ResponseWriter, r *http.Request) {
	page, err := s.api.HeroSlides.List(r.Context(), sessionToken(r.Context()), parseListParams(r))
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleCreateHeroSlide(w http.ResponseWriter, r *http.Request) {
	var in resources.HeroSlideInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	slide, err := s.api.HeroSlides.Create(r.Context(), sessionToken(r.Context()), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Created(w, slide)
}

func (s *Server) handleUpdateHeroSlide(w http.ResponseWriter, r *http.Request) {
	var in resources.HeroSlideInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	slide, err := s.api.HeroSlides.Update(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, slide)
}

func (s *Server) handleDeleteHeroSlide(w http.ResponseWriter, r *http.Request) {
	if err := s.api.HeroSlides.Delete(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleSetDisplayOrder(w http.ResponseWriter, r *http.Request) {
	var body displayOrderBody
	if !s.decodeBody(w, r, &body) {
		return
	}

	slide, err := s.api.HeroSlides.SetDisplayOrder(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"), body.DisplayOrder)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, slide)
}
