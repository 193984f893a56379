package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/careerdeck/gatekeeper/internal/identity"
	"github.com/careerdeck/gatekeeper/internal/models"
	pkghttp "github.com/careerdeck/gatekeeper/pkg/http"
)

// QuotaServiceInterface defines the interface for metered actions
type QuotaServiceInterface interface {
	CreatePost(ctx context.Context, uid, caption, mediaURL string) (*models.Post, error)
	SubmitApplication(ctx context.Context, uid, listingID string) (*models.Application, error)
}

// ActivityHandler serves the quota-metered create endpoints
type ActivityHandler struct {
	quota QuotaServiceInterface
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(quota QuotaServiceInterface) *ActivityHandler {
	return &ActivityHandler{quota: quota}
}

// CreatePostRequest represents the request body for creating a post
type CreatePostRequest struct {
	Caption  string `json:"caption" validate:"required,min=1,max=2000"`
	MediaURL string `json:"media_url" validate:"omitempty,url"`
}

// ApplyRequest represents the request body for a job application
type ApplyRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
}

// CreatePost handles POST /posts
func (h *ActivityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.quota.CreatePost(r.Context(), claims.UserID, req.Caption, req.MediaURL)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// Apply handles POST /applications
func (h *ActivityHandler) Apply(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	application, err := h.quota.SubmitApplication(r.Context(), claims.UserID, req.ListingID)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, application)
}
