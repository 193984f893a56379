package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a committed public-space post. Daily quota counting reads
// these rows directly, never a separate counter.
type Post struct {
	ID        uuid.UUID `db:"id"`
	UserID    string    `db:"user_id"`
	Caption   string    `db:"caption"`
	MediaURL  string    `db:"media_url"`
	CreatedAt time.Time `db:"created_at"`
}

// Application is a committed job application; the monthly quota is
// counted over these rows.
type Application struct {
	ID        uuid.UUID `db:"id"`
	UserID    string    `db:"user_id"`
	ListingID string    `db:"listing_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Resume is the artifact produced by the paid resume-generation flow
type Resume struct {
	ID            uuid.UUID `db:"id"`
	UserID        string    `db:"user_id"`
	Name          string    `db:"name"`
	Qualification string    `db:"qualification"`
	Experience    string    `db:"experience"`
	Skills        string    `db:"skills"`
	CreatedAt     time.Time `db:"created_at"`
}
