package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the JWT claims carried by a session token
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates session tokens. A token is only
// ever issued once the login policy reaches its Allowed terminal
// state; a Chrome step-up attempt gets no token until the challenge
// verifies.
type SessionManager struct {
	secret []byte
	expiry time.Duration
}

// NewSessionManager creates a SessionManager
func NewSessionManager(secret string, expiry time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), expiry: expiry}
}

// Issue creates a signed session token for an established identity
func (sm *SessionManager) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token
func (sm *SessionManager) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return sm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}
