package api

import (
	"encoding/json"
	"net/http"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	s.respondJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  code,
	})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLook, errors.ErrCodeInvalidItem,
		errors.ErrCodeInvalidImageRef, errors.ErrCodeInvalidProfile:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeLookNotFound, errors.ErrCodeRecordNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodePartialApply:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}
