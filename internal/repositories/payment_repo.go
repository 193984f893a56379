package repositories

import (
	"context"
	"fmt"

	"github.com/careerdeck/gatekeeper/internal/database"
	"github.com/careerdeck/gatekeeper/internal/models"
)

// PaymentRepository handles immutable payment records keyed by the
// gateway's transaction id
type PaymentRepository struct {
	db *database.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateIfAbsent inserts a payment record, returning false without
// error when a record with the same payment id already exists. This
// is the dedupe point for replayed gateway callbacks.
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, p *models.PaymentRecord) (bool, error) {
	query := `
		INSERT INTO payments (payment_id, user_id, plan, purpose, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (payment_id) DO NOTHING
	`

	result, err := r.db.Pool.Exec(ctx, query,
		p.PaymentID, p.UserID, p.Plan, p.Purpose, p.Amount, p.Status, p.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create payment record: %w", database.MapStoreError(err))
	}

	return result.RowsAffected() == 1, nil
}

// Get returns the payment record for an external transaction id
func (r *PaymentRepository) Get(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	query := `
		SELECT payment_id, user_id, plan, purpose, amount, status, created_at
		FROM payments
		WHERE payment_id = $1
	`

	var p models.PaymentRecord
	err := r.db.Pool.QueryRow(ctx, query, paymentID).Scan(
		&p.PaymentID, &p.UserID, &p.Plan, &p.Purpose, &p.Amount, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, database.MapStoreError(err)
	}

	return &p, nil
}
