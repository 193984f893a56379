package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/careerdeck/gatekeeper/internal/identity"
	"github.com/careerdeck/gatekeeper/internal/models"
	pkghttp "github.com/careerdeck/gatekeeper/pkg/http"
)

// AccountServiceInterface defines the interface for account operations
type AccountServiceInterface interface {
	Profile(ctx context.Context, uid string) (*models.Profile, error)
	ChangeLanguage(ctx context.Context, uid, language string) (bool, error)
	ConfirmLanguageChange(ctx context.Context, uid, language, code string) error
}

// LoginHistoryInterface defines the interface for audit history reads
type LoginHistoryInterface interface {
	History(ctx context.Context, userID string, limit, offset int) ([]*models.LoginAttempt, error)
}

// AccountHandler serves the caller's profile and settings endpoints
type AccountHandler struct {
	account AccountServiceInterface
	history LoginHistoryInterface
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(account AccountServiceInterface, history LoginHistoryInterface) *AccountHandler {
	return &AccountHandler{
		account: account,
		history: history,
	}
}

// ChangeLanguageRequest represents the request body for a language change
type ChangeLanguageRequest struct {
	Language string `json:"language" validate:"required,min=2,max=8"`
}

// ConfirmLanguageRequest represents the request body completing a
// gated language change.
type ConfirmLanguageRequest struct {
	Language string `json:"language" validate:"required,min=2,max=8"`
	Code     string `json:"code" validate:"required,len=6"`
}

// GetProfile handles GET /account/profile
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.account.Profile(r.Context(), claims.UserID)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// ChangeLanguage handles PUT /account/language
func (h *AccountHandler) ChangeLanguage(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangeLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	pending, err := h.account.ChangeLanguage(r.Context(), claims.UserID, req.Language)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	if pending {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "otp_required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated", "language": req.Language})
}

// ConfirmLanguage handles POST /account/language/verify
func (h *AccountHandler) ConfirmLanguage(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ConfirmLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.account.ConfirmLanguageChange(r.Context(), claims.UserID, req.Language, req.Code); err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated", "language": req.Language})
}

// LoginHistory handles GET /account/login-history
func (h *AccountHandler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	attempts, err := h.history.History(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}
