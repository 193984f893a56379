// Package checkout is a thin HTTP client for the hosted-checkout
// payment gateway. It owns request shaping, auth, and timeouts; the
// service layer depends only on the PaymentGateway port.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/careerdeck/gatekeeper/internal/services"
)

// Client talks to the gateway's order API
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewClient creates a checkout client. timeout bounds every gateway
// call end to end.
func NewClient(baseURL, keyID, keySecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Notes    struct {
		Description string `json:"description,omitempty"`
	} `json:"notes"`
}

type orderResponse struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
}

// CreateCheckout opens a hosted checkout and returns the gateway's
// order handle.
func (c *Client) CreateCheckout(ctx context.Context, req services.CheckoutRequest) (*services.CheckoutSession, error) {
	payload := orderRequest{
		Amount:   req.AmountMinorUnits,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}
	payload.Notes.Description = req.Description

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("checkout call failed: %w", models.ErrExternalCall)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("checkout returned status %d: %s: %w", resp.StatusCode, string(respBody), models.ErrExternalCall)
	}

	var order orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}

	return &services.CheckoutSession{
		OrderID:     order.ID,
		CheckoutURL: order.ShortURL,
	}, nil
}
