package gateway

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/pkg/resources"
)

// batchIDs is the body of the batch moderation endpoints.
type batchIDs struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	params := resources.CommentListParams{
		ListParams: parseListParams(r),
		Status:     r.URL.Query().Get("status"),
	}

	page, err := s.api.Comments.List(r.Context(), sessionToken(r.Context()), params)
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handleListContentComments(w http.ResponseWriter, r *http.Request) {
	params := resources.ContentCommentsParams{
		ListParams: parseListParams(r),
		TargetType: chi.URLParam(r, "type"),
		TargetID:   chi.URLParam(r, "id"),
	}

	page, err := s.api.Comments.ListForContent(r.Context(), sessionToken(r.Context()), params)
	if err != nil && page.Data == nil {
		s.respondError(w, err)
		return
	}
	s.respondRead(w, page, err)
}

func (s *Server) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.api.Comments.PendingCount(r.Context(), sessionToken(r.Context()))
	s.respondRead(w, count, err)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var in resources.CommentInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	comment, err := s.api.Comments.Create(r.Context(), sessionToken(r.Context()), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Created(w, comment)
}

func (s *Server) handleApproveComment(w http.ResponseWriter, r *http.Request) {
	s.moderateComment(w, r, s.api.Comments.Approve)
}

func (s *Server) handleRejectComment(w http.ResponseWriter, r *http.Request) {
	s.moderateComment(w, r, s.api.Comments.Reject)
}

func (s *Server) handleSpamComment(w http.ResponseWriter, r *http.Request) {
	s.moderateComment(w, r, s.api.Comments.Spam)
}

func (s *Server) moderateComment(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, token, id string) (resources.Comment, error)) {
	comment, err := op(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, comment)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Comments.Delete(r.Context(), sessionToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleBatchApproveComments(w http.ResponseWriter, r *http.Request) {
	var body batchIDs
	if !s.decodeBody(w, r, &body) {
		return
	}
	if len(body.IDs) == 0 {
		response.BadRequest(w, "ids are required")
		return
	}

	result, err := s.api.Comments.BatchApprove(r.Context(), sessionToken(r.Context()), body.IDs)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, result)
}

func (s *Server) handleBatchDeleteComments(w http.ResponseWriter, r *http.Request) {
	var body batchIDs
	if !s.decodeBody(w, r, &body) {
		return
	}
	if len(body.IDs) == 0 {
		response.BadRequest(w, "ids are required")
		return
	}

	result, err := s.api.Comments.BatchDelete(r.Context(), sessionToken(r.Context()), body.IDs)
	if err != nil {
		s.respondError(w, err)
		return
	}
	response.Success(w, result)
}
