package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/internal/validate"
	"github.com/tourwise/cms-client/pkg/client"
	"github.com/tourwise/cms-client/pkg/session"
)

// statusAndMessage translates an error into an HTTP status and a message
// safe to show to callers.
func (s *Server) statusAndMessage(err error) (int, string) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}

	if errors.Is(err, session.ErrUnauthenticated) {
		return http.StatusUnauthorized, "Invalid or expired session"
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 0 {
			return http.StatusBadGateway, "Backend unavailable"
		}
		return apiErr.StatusCode, apiErr.Message
	}

	s.logger.Error().Err(err).Msg("Unexpected error")
	return http.StatusInternalServerError, "Internal server error"
}

// respondError writes a plain error envelope.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, message := s.statusAndMessage(err)
	response.Error(w, status, message)
}

// respondRead writes the result of a cached read. When the refresh failed
// but a previous value survives, both ride in the same envelope so the
// admin UI can keep rendering data next to an error toast.
func (s *Server) respondRead(w http.ResponseWriter, data any, err error) {
	if err == nil {
		response.Success(w, data)
		return
	}
	status, message := s.statusAndMessage(err)
	response.ErrorWithData(w, status, message, data)
}

// decodeBody parses and validates a JSON request body. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid JSON payload")
		return false
	}
	if err := s.validator.Validate(dst); err != nil {
		response.BadRequest(w, err.Error())
		return false
	}
	return true
}
