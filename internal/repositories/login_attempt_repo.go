package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/careerdeck/gatekeeper/internal/database"
	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/jackc/pgx/v5"
)

// LoginAttemptRepository handles the append-only login audit log
type LoginAttemptRepository struct {
	db *database.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

func scanLoginAttemptRow(row rowScanner) (*models.LoginAttempt, error) {
	var a models.LoginAttempt
	err := row.Scan(
		&a.ID, &a.UserID, &a.Browser, &a.OS, &a.Device,
		&a.IPAddress, &a.Status, &a.Reason, &a.LoginTime,
	)
	if err != nil {
		return nil, database.MapStoreError(err)
	}
	return &a, nil
}

func scanLoginAttemptRows(rows pgx.Rows) ([]*models.LoginAttempt, error) {
	defer rows.Close()

	attempts := make([]*models.LoginAttempt, 0)

	for rows.Next() {
		a, err := scanLoginAttemptRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan login attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating login attempt rows: %w", err)
	}

	return attempts, nil
}

// Record appends a login attempt. Rows are never updated or deleted
// by request-path code.
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (id, user_id, browser, os, device, ip_address, status, reason, login_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.Browser,
		attempt.OS,
		attempt.Device,
		attempt.IPAddress,
		attempt.Status,
		attempt.Reason,
		attempt.LoginTime,
	)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", database.MapStoreError(err))
	}

	return nil
}

// ListByUser returns a user's attempts, newest first
func (r *LoginAttemptRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.LoginAttempt, error) {
	query := `
		SELECT id, user_id, browser, os, device, ip_address, status, reason, login_time
		FROM login_attempts
		WHERE user_id = $1
		ORDER BY login_time DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query login attempts: %w", err)
	}

	return scanLoginAttemptRows(rows)
}

// DeleteOlderThan removes attempts past the audit retention window
func (r *LoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_attempts WHERE login_time < $1`

	result, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old login attempts: %w", err)
	}

	return result.RowsAffected(), nil
}
