package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/careerdeck/gatekeeper/internal/identity"
	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/careerdeck/gatekeeper/internal/services"
	pkghttp "github.com/careerdeck/gatekeeper/pkg/http"
)

// ResumeServiceInterface defines the interface for the resume
// generation pipeline.
type ResumeServiceInterface interface {
	Start(ctx context.Context, uid string) error
	Confirm(ctx context.Context, uid, code string) (*services.CheckoutSession, error)
	HandlePaymentSuccess(ctx context.Context, paymentID, uid string, draft services.ResumeDraft) (*models.Resume, error)
	Resume(ctx context.Context, uid string) (*models.Resume, error)
}

// ResumeHandler serves the paid resume generation endpoints
type ResumeHandler struct {
	resumes ResumeServiceInterface
}

// NewResumeHandler creates a new ResumeHandler
func NewResumeHandler(resumes ResumeServiceInterface) *ResumeHandler {
	return &ResumeHandler{resumes: resumes}
}

// ConfirmResumeRequest represents the passcode confirmation body
type ConfirmResumeRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// ResumePaymentRequest represents the settlement report for a resume
// payment, carrying the draft content to persist.
type ResumePaymentRequest struct {
	PaymentID     string `json:"payment_id" validate:"required"`
	Name          string `json:"name" validate:"required,min=1,max=200"`
	Qualification string `json:"qualification" validate:"max=500"`
	Experience    string `json:"experience" validate:"max=2000"`
	Skills        string `json:"skills" validate:"max=1000"`
}

// Start handles POST /resume
func (h *ResumeHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.resumes.Start(r.Context(), claims.UserID); err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "otp_required"})
}

// Confirm handles POST /resume/confirm
func (h *ResumeHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ConfirmResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	session, err := h.resumes.Confirm(r.Context(), claims.UserID, req.Code)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"order_id":     session.OrderID,
		"checkout_url": session.CheckoutURL,
	})
}

// PaymentCallback handles POST /resume/payment
func (h *ResumeHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ResumePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resume, err := h.resumes.HandlePaymentSuccess(r.Context(), req.PaymentID, claims.UserID, services.ResumeDraft{
		Name:          req.Name,
		Qualification: req.Qualification,
		Experience:    req.Experience,
		Skills:        req.Skills,
	})
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resume)
}

// Get handles GET /resume
func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	resume, err := h.resumes.Resume(r.Context(), claims.UserID)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resume)
}
