package repositories

import (
	"context"
	"fmt"

	"github.com/careerdeck/gatekeeper/internal/database"
	"github.com/careerdeck/gatekeeper/internal/models"
)

// ResumeRepository handles generated resume artifacts
type ResumeRepository struct {
	db *database.DB
}

// NewResumeRepository creates a new ResumeRepository
func NewResumeRepository(db *database.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// Create inserts a resume row
func (r *ResumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	query := `
		INSERT INTO resumes (id, user_id, name, qualification, experience, skills, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		resume.ID, resume.UserID, resume.Name, resume.Qualification,
		resume.Experience, resume.Skills, resume.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resume: %w", database.MapStoreError(err))
	}

	return nil
}

// GetByUser returns the most recent resume for a user
func (r *ResumeRepository) GetByUser(ctx context.Context, uid string) (*models.Resume, error) {
	query := `
		SELECT id, user_id, name, qualification, experience, skills, created_at
		FROM resumes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var resume models.Resume
	err := r.db.Pool.QueryRow(ctx, query, uid).Scan(
		&resume.ID, &resume.UserID, &resume.Name, &resume.Qualification,
		&resume.Experience, &resume.Skills, &resume.CreatedAt,
	)
	if err != nil {
		return nil, database.MapStoreError(err)
	}

	return &resume, nil
}
