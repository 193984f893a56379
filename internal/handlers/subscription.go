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

// SubscriptionServiceInterface defines the interface for the plan
// purchase pipeline.
type SubscriptionServiceInterface interface {
	Start(ctx context.Context, uid string, tier models.PlanTier) error
	Confirm(ctx context.Context, uid string, tier models.PlanTier, code string) (*services.CheckoutSession, error)
	HandlePaymentSuccess(ctx context.Context, paymentID, uid string, tier models.PlanTier) error
	HandlePaymentFailure(ctx context.Context, paymentID, uid string, tier models.PlanTier) error
}

// SubscriptionHandler serves the plan purchase endpoints
type SubscriptionHandler struct {
	subscriptions SubscriptionServiceInterface
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptions SubscriptionServiceInterface) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// StartSubscriptionRequest represents the request body starting a purchase
type StartSubscriptionRequest struct {
	Tier string `json:"tier" validate:"required,oneof=bronze silver gold"`
}

// ConfirmSubscriptionRequest represents the request body confirming a
// purchase with a passcode.
type ConfirmSubscriptionRequest struct {
	Tier string `json:"tier" validate:"required,oneof=bronze silver gold"`
	Code string `json:"code" validate:"required,len=6"`
}

// PaymentCallbackRequest represents the settlement report for a
// subscription payment.
type PaymentCallbackRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Tier      string `json:"tier" validate:"required,oneof=bronze silver gold"`
	Status    string `json:"status" validate:"required,oneof=success failed"`
}

// Start handles POST /subscriptions
func (h *SubscriptionHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req StartSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.subscriptions.Start(r.Context(), claims.UserID, models.PlanTier(req.Tier)); err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "otp_required"})
}

// Confirm handles POST /subscriptions/confirm
func (h *SubscriptionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ConfirmSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	session, err := h.subscriptions.Confirm(r.Context(), claims.UserID, models.PlanTier(req.Tier), req.Code)
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"order_id":     session.OrderID,
		"checkout_url": session.CheckoutURL,
	})
}

// PaymentCallback handles POST /subscriptions/payment
func (h *SubscriptionHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req PaymentCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	tier := models.PlanTier(req.Tier)
	var err error
	if req.Status == models.PaymentStatusSuccess {
		err = h.subscriptions.HandlePaymentSuccess(r.Context(), req.PaymentID, claims.UserID, tier)
	} else {
		err = h.subscriptions.HandlePaymentFailure(r.Context(), req.PaymentID, claims.UserID, tier)
	}
	if err != nil {
		pkghttp.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
