package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/careerdeck/gatekeeper/internal/models"
)

// ErrorResponse is the standard API error body
type ErrorResponse struct {
	Error   string `json:"error"`             // Machine-readable error code
	Message string `json:"message"`           // Human-readable message
	Details string `json:"details,omitempty"` // Optional additional context
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   errorCode,
		Message: message,
	}

	// Encoding errors are not exposed to the client
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteServiceError maps a service-layer error to its HTTP response.
// Unrecognized errors become a generic 500 so internals never leak.
func WriteServiceError(w http.ResponseWriter, err error) {
	var policyErr *models.PolicyError
	if errors.As(err, &policyErr) {
		WriteError(w, http.StatusForbidden, "policy_denied", policyErr.Reason)
		return
	}

	switch {
	case errors.Is(err, models.ErrChallengeNotFound):
		WriteError(w, http.StatusNotFound, "challenge_not_found", "no pending verification found")
	case errors.Is(err, models.ErrChallengeExpired):
		WriteError(w, http.StatusGone, "challenge_expired", "verification code expired")
	case errors.Is(err, models.ErrChallengeMismatch):
		WriteError(w, http.StatusUnauthorized, "challenge_mismatch", "incorrect verification code")
	case errors.Is(err, models.ErrQuotaExceeded):
		WriteError(w, http.StatusForbidden, "quota_exceeded", err.Error())
	case errors.Is(err, models.ErrPlanRequired):
		WriteError(w, http.StatusForbidden, "plan_required", "a paid plan is required for this action")
	case errors.Is(err, models.ErrPolicyDenied):
		WriteError(w, http.StatusForbidden, "policy_denied", "action not permitted by policy")
	case errors.Is(err, models.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, models.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "action not allowed")
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, models.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "resource already exists")
	case errors.Is(err, models.ErrBadRequest):
		WriteError(w, http.StatusBadRequest, "bad_request", "invalid request")
	case errors.Is(err, models.ErrExternalCall):
		WriteError(w, http.StatusBadGateway, "upstream_failure", "an upstream service failed, try again")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}
