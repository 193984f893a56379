package models

import "time"

// ActionIntent binds a challenge to the specific privileged action it
// was issued for. A code issued for one intent never verifies another.
type ActionIntent string

const (
	IntentLogin          ActionIntent = "login"
	IntentLanguageChange ActionIntent = "language_change"
	IntentResume         ActionIntent = "resume_generation"
	IntentSubscription   ActionIntent = "subscription"
	IntentPasswordReset  ActionIntent = "password_reset"
)

// ChallengeTTL is how long an issued code stays verifiable
const ChallengeTTL = 5 * time.Minute

// ChallengeCodeLength is the number of digits in an issued code
const ChallengeCodeLength = 6

// Challenge is a one-time passcode record keyed by (subject, intent).
// A new challenge for the same key overwrites the prior one; there is
// no history. The code itself is stored only as a bcrypt hash.
type Challenge struct {
	SubjectID string       `db:"subject_id"`
	Intent    ActionIntent `db:"intent"`
	CodeHash  string       `db:"code_hash"`
	CreatedAt time.Time    `db:"created_at"`
	ExpiresAt time.Time    `db:"expires_at"`
	Verified  bool         `db:"verified"`
}

// ExpiredAt reports whether the challenge is expired at the given
// instant. A code submitted exactly at ExpiresAt is already expired.
func (c *Challenge) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
