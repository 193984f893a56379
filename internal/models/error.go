package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Policy outcomes surfaced directly to the caller
	ErrPolicyDenied  = errors.New("action denied by policy")
	ErrQuotaExceeded = errors.New("quota exceeded for this period")
	ErrPlanRequired  = errors.New("current plan does not permit this action")

	// Challenge verification outcomes
	ErrChallengeNotFound = errors.New("no challenge found for subject")
	ErrChallengeExpired  = errors.New("challenge has expired")
	ErrChallengeMismatch = errors.New("challenge code does not match")

	// External collaborator failures, caught at the orchestration boundary
	ErrExternalCall = errors.New("external call failed")
)

// PolicyError carries the user-facing reason for a policy denial.
// It unwraps to ErrPolicyDenied so callers can match the sentinel.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return e.Reason }

func (e *PolicyError) Unwrap() error { return ErrPolicyDenied }

// DeniedByPolicy constructs a PolicyError with the given reason.
func DeniedByPolicy(reason string) error {
	return &PolicyError{Reason: reason}
}
