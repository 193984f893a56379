package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/careerdeck/gatekeeper/internal/database"
	"github.com/careerdeck/gatekeeper/internal/models"
)

// ChallengeRepository handles one-time passcode challenges keyed by
// (subject, intent)
type ChallengeRepository struct {
	db *database.DB
}

// NewChallengeRepository creates a new ChallengeRepository
func NewChallengeRepository(db *database.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Put stores a challenge, overwriting any prior challenge for the
// same (subject, intent). Last write wins; no history is kept.
func (r *ChallengeRepository) Put(ctx context.Context, c *models.Challenge) error {
	query := `
		INSERT INTO challenges (subject_id, intent, code_hash, created_at, expires_at, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_id, intent) DO UPDATE
		SET code_hash = EXCLUDED.code_hash,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at,
		    verified = EXCLUDED.verified
	`

	_, err := r.db.Pool.Exec(ctx, query,
		c.SubjectID, c.Intent, c.CodeHash, c.CreatedAt, c.ExpiresAt, c.Verified,
	)
	if err != nil {
		return fmt.Errorf("failed to store challenge: %w", database.MapStoreError(err))
	}

	return nil
}

// Get returns the active challenge for (subject, intent), or
// models.ErrNotFound if none exists.
func (r *ChallengeRepository) Get(ctx context.Context, subjectID string, intent models.ActionIntent) (*models.Challenge, error) {
	query := `
		SELECT subject_id, intent, code_hash, created_at, expires_at, verified
		FROM challenges
		WHERE subject_id = $1 AND intent = $2
	`

	var c models.Challenge
	err := r.db.Pool.QueryRow(ctx, query, subjectID, intent).Scan(
		&c.SubjectID, &c.Intent, &c.CodeHash, &c.CreatedAt, &c.ExpiresAt, &c.Verified,
	)
	if err != nil {
		return nil, database.MapStoreError(err)
	}

	return &c, nil
}

// MarkVerified sets verified=true. The row is kept readable; expiry
// checks stay pull-based on read.
func (r *ChallengeRepository) MarkVerified(ctx context.Context, subjectID string, intent models.ActionIntent) error {
	query := `UPDATE challenges SET verified = true WHERE subject_id = $1 AND intent = $2`

	result, err := r.db.Pool.Exec(ctx, query, subjectID, intent)
	if err != nil {
		return fmt.Errorf("failed to mark challenge verified: %w", database.MapStoreError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes the challenge for (subject, intent). Used when email
// delivery fails and the challenge must be aborted.
func (r *ChallengeRepository) Delete(ctx context.Context, subjectID string, intent models.ActionIntent) error {
	query := `DELETE FROM challenges WHERE subject_id = $1 AND intent = $2`

	_, err := r.db.Pool.Exec(ctx, query, subjectID, intent)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", database.MapStoreError(err))
	}

	return nil
}

// DeleteExpiredBefore sweeps long-stale challenge rows. Retention
// hygiene only; verification never depends on this running.
func (r *ChallengeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM challenges WHERE expires_at < $1`

	result, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired challenges: %w", err)
	}

	return result.RowsAffected(), nil
}
