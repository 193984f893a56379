package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/careerdeck/gatekeeper/internal/database"
	"github.com/careerdeck/gatekeeper/internal/models"
)

// ActivityRepository handles the committed metered-action rows (posts
// and applications). Quota counting reads these rows for the active
// period; there is no separately incremented counter to drift.
type ActivityRepository struct {
	db *database.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *database.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// CountSince counts committed rows of the given kind for a user with
// created_at >= since.
func (r *ActivityRepository) CountSince(ctx context.Context, uid string, kind models.MeteredAction, since time.Time) (int, error) {
	var table string
	switch kind {
	case models.ActionDailyPost:
		table = "posts"
	case models.ActionMonthlyApplication:
		table = "applications"
	default:
		return 0, fmt.Errorf("unknown metered action %q: %w", kind, models.ErrBadRequest)
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1 AND created_at >= $2`, table)

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, uid, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", kind, err)
	}

	return count, nil
}

// CreatePost commits a post row
func (r *ActivityRepository) CreatePost(ctx context.Context, p *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, caption, media_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query, p.ID, p.UserID, p.Caption, p.MediaURL, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", database.MapStoreError(err))
	}

	return nil
}

// CreateApplication commits an application row
func (r *ActivityRepository) CreateApplication(ctx context.Context, a *models.Application) error {
	query := `
		INSERT INTO applications (id, user_id, listing_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query, a.ID, a.UserID, a.ListingID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", database.MapStoreError(err))
	}

	return nil
}
