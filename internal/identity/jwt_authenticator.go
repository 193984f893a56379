package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the token shape the upstream identity provider
// issues after its own credential check.
type IdentityClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"picture"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies identity-provider tokens. The credential
// presented at login is the provider's signed token; this process
// never sees a password.
type JWTAuthenticator struct {
	secret []byte
}

// NewJWTAuthenticator creates an authenticator for tokens signed with
// the shared provider secret.
func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

// SignIn verifies the credential and extracts the caller's identity
func (a *JWTAuthenticator) SignIn(ctx context.Context, credential string) (*Identity, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid credential: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid credential: missing subject")
	}

	return &Identity{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.PhotoURL,
	}, nil
}
