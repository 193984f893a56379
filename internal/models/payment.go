package models

import "time"

// Payment statuses
const (
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// PaymentRecord is created exactly once per external payment
// confirmation and is immutable thereafter. The gateway's transaction
// id is the primary key, which is what makes duplicate callbacks
// idempotent at the store level.
type PaymentRecord struct {
	PaymentID string    `db:"payment_id"`
	UserID    string    `db:"user_id"`
	Plan      PlanTier  `db:"plan"`
	Purpose   string    `db:"purpose"`
	Amount    int64     `db:"amount"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// Payment purposes
const (
	PaymentPurposeSubscription = "subscription"
	PaymentPurposeResume       = "resume_generation"
)
