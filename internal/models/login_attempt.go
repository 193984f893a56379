package models

import (
	"time"

	"github.com/google/uuid"
)

// Login attempt statuses
const (
	LoginStatusSuccess = "success"
	LoginStatusBlocked = "blocked"
)

// Reasons recorded for policy outcomes
const (
	LoginReasonAllowed      = "login allowed"
	LoginReasonMobileWindow = "mobile login outside allowed window"
	LoginReasonOTPRequired  = "OTP required"
	LoginReasonOTPCompleted = "login allowed after OTP"
)

// UnknownUserID marks attempts blocked before identity was established
const UnknownUserID = "unknown"

// LoginAttempt is an append-only audit record of a single login attempt.
// Rows are created once per attempt and never mutated or deleted.
type LoginAttempt struct {
	ID        uuid.UUID   `db:"id"`
	UserID    string      `db:"user_id"`
	Browser   Browser     `db:"browser"`
	OS        OS          `db:"os"`
	Device    DeviceClass `db:"device"`
	IPAddress string      `db:"ip_address"`
	Status    string      `db:"status"`
	Reason    string      `db:"reason"`
	LoginTime time.Time   `db:"login_time"`
}

// Blocked reports whether the attempt was denied
func (a *LoginAttempt) Blocked() bool {
	return a.Status == LoginStatusBlocked
}
