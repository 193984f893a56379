package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/careerdeck/gatekeeper/internal/models"
	pkglogger "github.com/careerdeck/gatekeeper/pkg/logger"
	"github.com/google/uuid"
)

// LoginAttemptRepository defines the interface for login audit storage
type LoginAttemptRepository interface {
	Record(ctx context.Context, attempt *models.LoginAttempt) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.LoginAttempt, error)
}

// AuditService records every login policy decision twice: a durable
// row in the attempts table and a structured log event. The row is the
// source of truth; a failed insert fails the operation that triggered
// it so the trail never silently drops a decision.
type AuditService struct {
	repo        LoginAttemptRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo LoginAttemptRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuditService {
	return &AuditService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// RecordAttempt persists a login decision and mirrors it to the log
// stream. The attempt's ID is assigned here.
func (s *AuditService) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}

	if err := s.repo.Record(ctx, attempt); err != nil {
		s.logger.Error("failed to record login attempt",
			slog.String("user_id", attempt.UserID),
			slog.Any("error", err))
		return fmt.Errorf("failed to record login attempt: %w", err)
	}

	s.auditLogger.LogLoginDecision(pkglogger.PolicyEvent{
		EventType: "login_attempt",
		UserID:    attempt.UserID,
		IPAddress: attempt.IPAddress,
		Allowed:   !attempt.Blocked(),
		Reason:    attempt.Reason,
	})

	return nil
}

// History returns a user's login attempts, newest first
func (s *AuditService) History(ctx context.Context, userID string, limit, offset int) ([]*models.LoginAttempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	attempts, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list login attempts: %w", err)
	}
	return attempts, nil
}
