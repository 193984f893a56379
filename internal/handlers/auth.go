package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/careerdeck/gatekeeper/internal/services"
	pkghttp "github.com/careerdeck/gatekeeper/pkg/http"
)

// LoginServiceInterface defines the interface for login policy evaluation
type LoginServiceInterface interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	CompleteLogin(ctx context.Context, req services.LoginRequest, code string) (*services.LoginResult, error)
}

// PasswordResetInterface defines the interface for reset requests
type PasswordResetInterface interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// AuthHandler handles login and step-up verification requests
type AuthHandler struct {
	login    LoginServiceInterface
	resets   PasswordResetInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(login LoginServiceInterface, resets PasswordResetInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		login:    login,
		resets:   resets,
		ipConfig: ipConfig,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// VerifyLoginRequest represents the request body for completing a
// step-up login.
type VerifyLoginRequest struct {
	Credential string `json:"credential" validate:"required"`
	Code       string `json:"code" validate:"required,len=6"`
}

// PasswordResetRequest represents the request body for a reset request
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResponse represents the response for login operations
type LoginResponse struct {
	Status  string          `json:"status"`
	Token   string          `json:"token,omitempty"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.login.Login(r.Context(), services.LoginRequest{
		Credential: req.Credential,
		UserAgent:  r.Header.Get("User-Agent"),
		IPAddress:  pkghttp.ExtractClientIP(r, h.ipConfig),
	})
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Status:  string(result.Status),
		Token:   result.Token,
		Profile: result.Profile,
	})
}

// VerifyLogin handles POST /auth/login/verify
func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req VerifyLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.login.CompleteLogin(r.Context(), services.LoginRequest{
		Credential: req.Credential,
		UserAgent:  r.Header.Get("User-Agent"),
		IPAddress:  pkghttp.ExtractClientIP(r, h.ipConfig),
	}, req.Code)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Status:  string(result.Status),
		Token:   result.Token,
		Profile: result.Profile,
	})
}

// RequestPasswordReset handles POST /auth/password-reset
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.resets.RequestPasswordReset(r.Context(), email); err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
