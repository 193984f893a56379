package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careerdeck/gatekeeper/internal/identity"
	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/careerdeck/gatekeeper/internal/services"
	pkghttp "github.com/careerdeck/gatekeeper/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext adds session claims to the request context for
// testing authenticated endpoints.
func WithSessionContext(req *http.Request, userID, email string) *http.Request {
	claims := &identity.SessionClaims{
		UserID: userID,
		Email:  email,
	}
	ctx := context.WithValue(req.Context(), identity.SessionContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockLoginService implements LoginServiceInterface for testing
type MockLoginService struct {
	LoginFunc         func(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	CompleteLoginFunc func(ctx context.Context, req services.LoginRequest, code string) (*services.LoginResult, error)
}

func (m *MockLoginService) Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockLoginService) CompleteLogin(ctx context.Context, req services.LoginRequest, code string) (*services.LoginResult, error) {
	if m.CompleteLoginFunc != nil {
		return m.CompleteLoginFunc(ctx, req, code)
	}
	return nil, models.ErrUnauthorized
}

// MockPasswordReset implements PasswordResetInterface for testing
type MockPasswordReset struct {
	RequestPasswordResetFunc func(ctx context.Context, email string) error
}

func (m *MockPasswordReset) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

// MockAccountService implements AccountServiceInterface for testing
type MockAccountService struct {
	ProfileFunc               func(ctx context.Context, uid string) (*models.Profile, error)
	ChangeLanguageFunc        func(ctx context.Context, uid, language string) (bool, error)
	ConfirmLanguageChangeFunc func(ctx context.Context, uid, language, code string) error
}

func (m *MockAccountService) Profile(ctx context.Context, uid string) (*models.Profile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, uid)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountService) ChangeLanguage(ctx context.Context, uid, language string) (bool, error) {
	if m.ChangeLanguageFunc != nil {
		return m.ChangeLanguageFunc(ctx, uid, language)
	}
	return false, nil
}

func (m *MockAccountService) ConfirmLanguageChange(ctx context.Context, uid, language, code string) error {
	if m.ConfirmLanguageChangeFunc != nil {
		return m.ConfirmLanguageChangeFunc(ctx, uid, language, code)
	}
	return nil
}

// MockLoginHistory implements LoginHistoryInterface for testing
type MockLoginHistory struct {
	HistoryFunc func(ctx context.Context, userID string, limit, offset int) ([]*models.LoginAttempt, error)
}

func (m *MockLoginHistory) History(ctx context.Context, userID string, limit, offset int) ([]*models.LoginAttempt, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

// MockQuotaService implements QuotaServiceInterface for testing
type MockQuotaService struct {
	CreatePostFunc        func(ctx context.Context, uid, caption, mediaURL string) (*models.Post, error)
	SubmitApplicationFunc func(ctx context.Context, uid, listingID string) (*models.Application, error)
}

func (m *MockQuotaService) CreatePost(ctx context.Context, uid, caption, mediaURL string) (*models.Post, error) {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, uid, caption, mediaURL)
	}
	return nil, models.ErrQuotaExceeded
}

func (m *MockQuotaService) SubmitApplication(ctx context.Context, uid, listingID string) (*models.Application, error) {
	if m.SubmitApplicationFunc != nil {
		return m.SubmitApplicationFunc(ctx, uid, listingID)
	}
	return nil, models.ErrQuotaExceeded
}

// MockSubscriptionService implements SubscriptionServiceInterface for testing
type MockSubscriptionService struct {
	StartFunc                func(ctx context.Context, uid string, tier models.PlanTier) error
	ConfirmFunc              func(ctx context.Context, uid string, tier models.PlanTier, code string) (*services.CheckoutSession, error)
	HandlePaymentSuccessFunc func(ctx context.Context, paymentID, uid string, tier models.PlanTier) error
	HandlePaymentFailureFunc func(ctx context.Context, paymentID, uid string, tier models.PlanTier) error
}

func (m *MockSubscriptionService) Start(ctx context.Context, uid string, tier models.PlanTier) error {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, uid, tier)
	}
	return nil
}

func (m *MockSubscriptionService) Confirm(ctx context.Context, uid string, tier models.PlanTier, code string) (*services.CheckoutSession, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, uid, tier, code)
	}
	return nil, models.ErrChallengeNotFound
}

func (m *MockSubscriptionService) HandlePaymentSuccess(ctx context.Context, paymentID, uid string, tier models.PlanTier) error {
	if m.HandlePaymentSuccessFunc != nil {
		return m.HandlePaymentSuccessFunc(ctx, paymentID, uid, tier)
	}
	return nil
}

func (m *MockSubscriptionService) HandlePaymentFailure(ctx context.Context, paymentID, uid string, tier models.PlanTier) error {
	if m.HandlePaymentFailureFunc != nil {
		return m.HandlePaymentFailureFunc(ctx, paymentID, uid, tier)
	}
	return nil
}

// MockResumeService implements ResumeServiceInterface for testing
type MockResumeService struct {
	StartFunc                func(ctx context.Context, uid string) error
	ConfirmFunc              func(ctx context.Context, uid, code string) (*services.CheckoutSession, error)
	HandlePaymentSuccessFunc func(ctx context.Context, paymentID, uid string, draft services.ResumeDraft) (*models.Resume, error)
	ResumeFunc               func(ctx context.Context, uid string) (*models.Resume, error)
}

func (m *MockResumeService) Start(ctx context.Context, uid string) error {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, uid)
	}
	return nil
}

func (m *MockResumeService) Confirm(ctx context.Context, uid, code string) (*services.CheckoutSession, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, uid, code)
	}
	return nil, models.ErrChallengeNotFound
}

func (m *MockResumeService) HandlePaymentSuccess(ctx context.Context, paymentID, uid string, draft services.ResumeDraft) (*models.Resume, error) {
	if m.HandlePaymentSuccessFunc != nil {
		return m.HandlePaymentSuccessFunc(ctx, paymentID, uid, draft)
	}
	return nil, models.ErrNotFound
}

func (m *MockResumeService) Resume(ctx context.Context, uid string) (*models.Resume, error) {
	if m.ResumeFunc != nil {
		return m.ResumeFunc(ctx, uid)
	}
	return nil, models.ErrNotFound
}
