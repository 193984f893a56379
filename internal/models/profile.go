package models

import "time"

// DefaultLanguage is the language assigned to new profiles
const DefaultLanguage = "en"

// OnboardingFriendsCount is the friends count granted to brand-new
// profiles; the quota grant rules key off it.
const OnboardingFriendsCount = 2

// Profile is the per-user platform state the gating engine reads and
// merges. Missing profiles are lazily created with defaults on first
// read rather than treated as an error.
type Profile struct {
	UID          string     `db:"uid"`
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	PhotoURL     string     `db:"photo_url"`
	Plan         PlanTier   `db:"plan"`
	Language     string     `db:"language"`
	FriendsCount int        `db:"friends_count"`
	HasResume    bool       `db:"has_resume"`
	ResumeID     *string    `db:"resume_id"`
	SubscribedAt *time.Time `db:"subscribed_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// NewProfile builds the default profile provisioned on first read
func NewProfile(uid, email, name, photoURL string, now time.Time) *Profile {
	return &Profile{
		UID:          uid,
		Email:        email,
		Name:         name,
		PhotoURL:     photoURL,
		Plan:         PlanFree,
		Language:     DefaultLanguage,
		FriendsCount: OnboardingFriendsCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
