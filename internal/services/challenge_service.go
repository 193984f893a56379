package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/careerdeck/gatekeeper/internal/models"
	pkglogger "github.com/careerdeck/gatekeeper/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// ChallengeRepository defines the interface for challenge storage
type ChallengeRepository interface {
	Put(ctx context.Context, c *models.Challenge) error
	Get(ctx context.Context, subjectID string, intent models.ActionIntent) (*models.Challenge, error)
	MarkVerified(ctx context.Context, subjectID string, intent models.ActionIntent) error
	Delete(ctx context.Context, subjectID string, intent models.ActionIntent) error
}

// ChallengeService issues and verifies one-time passcodes for
// privileged actions. At most one live challenge exists per
// (subject, intent); issuing again overwrites the previous code.
type ChallengeService struct {
	repo        ChallengeRepository
	email       EmailSender
	limiter     IssueLimiter
	clock       models.Clock
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewChallengeService creates a new ChallengeService. limiter may be
// nil, in which case issuance is uncapped.
func NewChallengeService(repo ChallengeRepository, email EmailSender, limiter IssueLimiter, clock models.Clock, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ChallengeService {
	return &ChallengeService{
		repo:        repo,
		email:       email,
		limiter:     limiter,
		clock:       clock,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Issue generates a fresh passcode for the subject and intent, stores
// its hash, and emails the plaintext code. If delivery fails the
// stored challenge is removed so an unverifiable code never lingers.
func (s *ChallengeService) Issue(ctx context.Context, subjectID, email string, intent models.ActionIntent) error {
	if subjectID == "" || email == "" {
		return models.ErrBadRequest
	}

	if s.limiter != nil && !s.limiter.Allow(subjectID+":"+string(intent)) {
		s.logger.Warn("challenge issuance rate limited",
			slog.String("subject_id", subjectID),
			slog.String("intent", string(intent)))
		return fmt.Errorf("too many codes requested: %w", models.ErrForbidden)
	}

	code, err := generateCode(models.ChallengeCodeLength)
	if err != nil {
		return fmt.Errorf("failed to generate passcode: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash passcode: %w", err)
	}

	now := s.clock.Now()
	challenge := &models.Challenge{
		SubjectID: subjectID,
		Intent:    intent,
		CodeHash:  string(hash),
		CreatedAt: now,
		ExpiresAt: now.Add(models.ChallengeTTL),
	}

	if err := s.repo.Put(ctx, challenge); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	if err := s.email.SendPasscode(ctx, email, code, intent, challenge.ExpiresAt); err != nil {
		// The subject never saw the code, so leave no record behind
		if delErr := s.repo.Delete(ctx, subjectID, intent); delErr != nil {
			s.logger.Error("failed to remove undeliverable challenge",
				slog.String("subject_id", subjectID),
				slog.Any("error", delErr))
		}
		s.auditLogger.LogChallengeEvent("challenge_issue", subjectID, string(intent), false)
		return fmt.Errorf("passcode delivery failed: %w", models.ErrExternalCall)
	}

	s.auditLogger.LogChallengeEvent("challenge_issue", subjectID, string(intent), true)
	return nil
}

// Verify checks a submitted code against the live challenge for the
// subject and intent. Only a correct, unexpired code marks the
// challenge verified; every failure leaves it untouched.
func (s *ChallengeService) Verify(ctx context.Context, subjectID string, intent models.ActionIntent, code string) error {
	challenge, err := s.repo.Get(ctx, subjectID, intent)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogChallengeEvent("challenge_verify", subjectID, string(intent), false)
			return models.ErrChallengeNotFound
		}
		return fmt.Errorf("failed to load challenge: %w", err)
	}

	if challenge.ExpiredAt(s.clock.Now()) {
		s.auditLogger.LogChallengeEvent("challenge_verify", subjectID, string(intent), false)
		return models.ErrChallengeExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)); err != nil {
		s.auditLogger.LogChallengeEvent("challenge_verify", subjectID, string(intent), false)
		return models.ErrChallengeMismatch
	}

	if err := s.repo.MarkVerified(ctx, subjectID, intent); err != nil {
		return fmt.Errorf("failed to mark challenge verified: %w", err)
	}

	s.auditLogger.LogChallengeEvent("challenge_verify", subjectID, string(intent), true)
	return nil
}

// generateCode returns a zero-padded numeric code of n digits from
// crypto/rand.
func generateCode(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
