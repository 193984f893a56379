package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/careerdeck/gatekeeper/internal/database"
	"github.com/careerdeck/gatekeeper/internal/models"
)

// ProfileRepository handles user profile state
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfileRow(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.UID, &p.Email, &p.Name, &p.PhotoURL, &p.Plan, &p.Language,
		&p.FriendsCount, &p.HasResume, &p.ResumeID, &p.SubscribedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapStoreError(err)
	}
	return &p, nil
}

// Get returns the profile for a uid, or models.ErrNotFound
func (r *ProfileRepository) Get(ctx context.Context, uid string) (*models.Profile, error) {
	query := `
		SELECT uid, email, name, photo_url, plan, language, friends_count,
		       has_resume, resume_id, subscribed_at, created_at, updated_at
		FROM profiles
		WHERE uid = $1
	`

	return scanProfileRow(r.db.Pool.QueryRow(ctx, query, uid))
}

// Create inserts a new profile. Conflicts on uid map to ErrConflict
// so concurrent auto-provision attempts can fall back to Get.
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (uid, email, name, photo_url, plan, language, friends_count,
		                      has_resume, resume_id, subscribed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		p.UID, p.Email, p.Name, p.PhotoURL, p.Plan, p.Language, p.FriendsCount,
		p.HasResume, p.ResumeID, p.SubscribedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", database.MapStoreError(err))
	}

	return nil
}

// SetPlan merges the purchased tier into the profile
func (r *ProfileRepository) SetPlan(ctx context.Context, uid string, tier models.PlanTier, subscribedAt time.Time) error {
	query := `
		UPDATE profiles
		SET plan = $2, subscribed_at = $3, updated_at = $3
		WHERE uid = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, uid, tier, subscribedAt)
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", database.MapStoreError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetLanguage merges the chosen language into the profile
func (r *ProfileRepository) SetLanguage(ctx context.Context, uid, language string, now time.Time) error {
	query := `UPDATE profiles SET language = $2, updated_at = $3 WHERE uid = $1`

	result, err := r.db.Pool.Exec(ctx, query, uid, language, now)
	if err != nil {
		return fmt.Errorf("failed to set language: %w", database.MapStoreError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetResume merges the generated resume reference into the profile
func (r *ProfileRepository) SetResume(ctx context.Context, uid, resumeID string, now time.Time) error {
	query := `
		UPDATE profiles
		SET has_resume = true, resume_id = $2, updated_at = $3
		WHERE uid = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, uid, resumeID, now)
	if err != nil {
		return fmt.Errorf("failed to set resume: %w", database.MapStoreError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
