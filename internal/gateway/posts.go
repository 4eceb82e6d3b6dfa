package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/pkg/resources"
)

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := resources.PostListParams{
		ListParams: parseListParams(r),
		Status:     q.Get("status"),
		Category:   q.Get("category"),
		Tag:        q.Get("tag"),
		Search:     q.Get("search"),
	}

	page, err := s.api.Posts.List(r.Context(), sessionToken(r.Context()), params)
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.api.Posts.Get(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "idOrSlug"))
	if err != nil && post.ID == "" {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, post, err)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in resources.PostInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	post, err := s.api.Posts.Create(r.Context(), sessionToken(r.Context()), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Created(w, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var in resources.PostInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	post, err := s.api.Posts.Update(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Posts.Delete(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}

func (s *Server) handlePublishPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.api.Posts.Publish(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, post)
}

func (s *Server) handleUnpublishPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.api.Posts.Unpublish(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, post)
}
