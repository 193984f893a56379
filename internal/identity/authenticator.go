package identity

import "context"

// Identity is the verified result of an external sign-in
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Authenticator is the external identity-provider collaborator. It is
// only consulted after device/time policy gates pass; its errors are
// reported as a generic login failure, never audited as a policy
// outcome.
type Authenticator interface {
	SignIn(ctx context.Context, credential string) (*Identity, error)
}
