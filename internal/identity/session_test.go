package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "session-test-secret-32-chars-min!"

func TestSessionManager_IssueAndValidate(t *testing.T) {
	sm := NewSessionManager(testSecret, time.Hour)

	token, err := sm.Issue("user-1", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := sm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestSessionManager_ValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewSessionManager(testSecret, time.Hour).Issue("user-1", "user@example.com")
	require.NoError(t, err)

	other := NewSessionManager("a-completely-different-secret-32c!", time.Hour)
	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_ValidateRejectsExpired(t *testing.T) {
	sm := NewSessionManager(testSecret, -time.Minute)
	token, err := sm.Issue("user-1", "user@example.com")
	require.NoError(t, err)

	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_ValidateRejectsNoneAlgorithm(t *testing.T) {
	claims := &SessionClaims{UserID: "user-1"}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	sm := NewSessionManager(testSecret, time.Hour)
	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestMiddleware_AttachesClaims(t *testing.T) {
	sm := NewSessionManager(testSecret, time.Hour)
	token, err := sm.Issue("user-1", "user@example.com")
	require.NoError(t, err)

	var seen *SessionClaims
	handler := Middleware(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
}

func TestMiddleware_RejectsMissingAndMalformedTokens(t *testing.T) {
	sm := NewSessionManager(testSecret, time.Hour)
	handler := Middleware(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	for _, header := range []string{"", "Bearer", "Bearer garbage", "Basic dXNlcjpwdw=="} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestJWTAuthenticator_SignIn(t *testing.T) {
	auth := NewJWTAuthenticator("idp-shared-secret")

	claims := &IdentityClaims{
		Email:    "user@example.com",
		Name:     "Test User",
		PhotoURL: "https://img.example/u.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	credential, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("idp-shared-secret"))
	require.NoError(t, err)

	id, err := auth.SignIn(context.Background(), credential)
	require.NoError(t, err)
	assert.Equal(t, "uid-42", id.UID)
	assert.Equal(t, "user@example.com", id.Email)
	assert.Equal(t, "Test User", id.DisplayName)
}

func TestJWTAuthenticator_RejectsBadSignature(t *testing.T) {
	claims := &IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "uid-42"},
	}
	credential, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	auth := NewJWTAuthenticator("idp-shared-secret")
	_, err = auth.SignIn(context.Background(), credential)
	assert.Error(t, err)
}

func TestJWTAuthenticator_RejectsMissingSubject(t *testing.T) {
	claims := &IdentityClaims{Email: "user@example.com"}
	credential, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("idp-shared-secret"))
	require.NoError(t, err)

	auth := NewJWTAuthenticator("idp-shared-secret")
	_, err = auth.SignIn(context.Background(), credential)
	assert.Error(t, err)
}
