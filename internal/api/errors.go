// Package api implements the HTTP surface of the A-Live-Grid service:
// post CRUD, the short/long relevance feeds, voting, and health probes.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alivegrid/alivegrid/internal/middleware"
)

// Error codes returned in the error envelope. Clients dispatch on these, so
// they are part of the API contract.
const (
	ErrCodeValidation       = "validation_error"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeInvalidVoteType  = "invalid_vote_type"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "rate_limit_exceeded"
	ErrCodeAuthFailed       = "auth_failed"
	ErrCodeInternal         = "internal_error"
)

// ErrorDetail is the inner error object of the envelope.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error envelope for all non-2xx responses:
//
//	{"error": {"code": "not_found", "message": "Post not found"}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// WriteError writes the standard error envelope and records the error code on
// the request context so the logging middleware can include it. The request
// is mutated in place because the middleware wraps the same *http.Request.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	*r = *r.WithContext(middleware.SetErrorCode(r.Context(), code))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response", "error", err)
	}
}

// writeJSON writes a 2xx JSON response body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
