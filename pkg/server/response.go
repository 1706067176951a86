package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/cratecat/pkg/errors"
	"github.com/matzehuels/cratecat/pkg/observability"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidMetadata,
		errors.ErrCodeUnsupportedFormatVersion,
		errors.ErrCodeMalformedVersion,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeConflictingVersions:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		switch status {
		case http.StatusRequestEntityTooLarge:
			code = "BODY_TOO_LARGE"
		case http.StatusGatewayTimeout:
			code = string(errors.ErrCodeTimeout)
		default:
			code = string(errors.ErrCodeInternal)
		}
	}
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), code)

	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}
