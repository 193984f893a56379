package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careerdeck/gatekeeper/internal/handlers"
	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/careerdeck/gatekeeper/internal/services"
	pkghttp "github.com/careerdeck/gatekeeper/pkg/http"
)

func TestLogin_Allowed(t *testing.T) {
	mockLogin := &handlers.MockLoginService{
		LoginFunc: func(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
			return &services.LoginResult{
				Status:  services.LoginAllowed,
				Token:   "session_token_123",
				Profile: &models.Profile{UID: "uid-1", Plan: models.PlanFree},
			}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockLogin, nil, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Credential: "idp-token",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "allowed", resp.Status)
	assert.Equal(t, "session_token_123", resp.Token)
	assert.Equal(t, "uid-1", resp.Profile.UID)
}

func TestLogin_PendingOTPHasNoToken(t *testing.T) {
	mockLogin := &handlers.MockLoginService{
		LoginFunc: func(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
			return &services.LoginResult{
				Status:  services.LoginPendingOTP,
				Profile: &models.Profile{UID: "uid-1"},
			}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockLogin, nil, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Credential: "idp-token",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "pending_otp", resp.Status)
	assert.Empty(t, resp.Token)
}

func TestLogin_PolicyDenialCarriesReason(t *testing.T) {
	mockLogin := &handlers.MockLoginService{
		LoginFunc: func(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
			return nil, models.DeniedByPolicy(models.LoginReasonMobileWindow)
		},
	}

	handler := handlers.NewAuthHandler(mockLogin, nil, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Credential: "idp-token",
	})
	req.Header.Set("User-Agent", "Mozilla/5.0 (Linux; Android 13) Chrome/120.0.0.0 Mobile Safari/537.36")

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 403, "policy_denied")

	var resp pkghttp.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, models.LoginReasonMobileWindow, resp.Message)
}

func TestLogin_MissingCredentialRejected(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockLoginService{}, nil, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestVerifyLogin_Success(t *testing.T) {
	mockLogin := &handlers.MockLoginService{
		CompleteLoginFunc: func(ctx context.Context, req services.LoginRequest, code string) (*services.LoginResult, error) {
			assert.Equal(t, "123456", code)
			return &services.LoginResult{
				Status: services.LoginAllowed,
				Token:  "session_token_456",
			}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockLogin, nil, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/login/verify", handlers.VerifyLoginRequest{
		Credential: "idp-token",
		Code:       "123456",
	})

	w := httptest.NewRecorder()
	handler.VerifyLogin(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "session_token_456", resp.Token)
}

func TestVerifyLogin_WrongCode(t *testing.T) {
	mockLogin := &handlers.MockLoginService{
		CompleteLoginFunc: func(ctx context.Context, req services.LoginRequest, code string) (*services.LoginResult, error) {
			return nil, models.ErrChallengeMismatch
		},
	}

	handler := handlers.NewAuthHandler(mockLogin, nil, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/login/verify", handlers.VerifyLoginRequest{
		Credential: "idp-token",
		Code:       "000000",
	})

	w := httptest.NewRecorder()
	handler.VerifyLogin(w, req)

	handlers.AssertErrorResponse(t, w, 401, "challenge_mismatch")
}

func TestVerifyLogin_ShortCodeRejected(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockLoginService{}, nil, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/login/verify", handlers.VerifyLoginRequest{
		Credential: "idp-token",
		Code:       "123",
	})

	w := httptest.NewRecorder()
	handler.VerifyLogin(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestRequestPasswordReset_NormalizesEmail(t *testing.T) {
	var gotEmail string
	mockResets := &handlers.MockPasswordReset{
		RequestPasswordResetFunc: func(ctx context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}

	handler := handlers.NewAuthHandler(&handlers.MockLoginService{}, mockResets, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/password-reset", handlers.PasswordResetRequest{
		Email: "User@Example.COM",
	})

	w := httptest.NewRecorder()
	handler.RequestPasswordReset(w, req)

	assert.Equal(t, 202, w.Code)
	assert.Equal(t, "user@example.com", gotEmail)
}

func TestRequestPasswordReset_DailyCapSurfacesAsPolicyDenial(t *testing.T) {
	mockResets := &handlers.MockPasswordReset{
		RequestPasswordResetFunc: func(ctx context.Context, email string) error {
			return models.DeniedByPolicy("password reset already requested today")
		},
	}

	handler := handlers.NewAuthHandler(&handlers.MockLoginService{}, mockResets, nil)
	req := handlers.NewTestRequest(t, "POST", "/auth/password-reset", handlers.PasswordResetRequest{
		Email: "user@example.com",
	})

	w := httptest.NewRecorder()
	handler.RequestPasswordReset(w, req)

	handlers.AssertErrorResponse(t, w, 403, "policy_denied")
}
