package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/careerdeck/gatekeeper/internal/identity"
	"github.com/careerdeck/gatekeeper/internal/models"
	pkglogger "github.com/careerdeck/gatekeeper/pkg/logger"
)

// ProfileRepository defines the interface for profile storage
type ProfileRepository interface {
	Get(ctx context.Context, uid string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	SetPlan(ctx context.Context, uid string, tier models.PlanTier, subscribedAt time.Time) error
	SetLanguage(ctx context.Context, uid, language string, now time.Time) error
	SetResume(ctx context.Context, uid, resumeID string, now time.Time) error
}

// GatedLanguage is the UI language whose selection requires a verified
// passcode.
const GatedLanguage = "fr"

// AccountService owns profile provisioning and the account-level
// settings flows: language changes and password reset requests.
type AccountService struct {
	profiles     ProfileRepository
	challenges   *ChallengeService
	email        EmailSender
	resetLimiter IssueLimiter
	clock        models.Clock
	logger       *slog.Logger
}

// NewAccountService creates a new AccountService. resetLimiter caps
// password reset requests per email and may be nil.
func NewAccountService(profiles ProfileRepository, challenges *ChallengeService, email EmailSender, resetLimiter IssueLimiter, clock models.Clock, logger *slog.Logger) *AccountService {
	return &AccountService{
		profiles:     profiles,
		challenges:   challenges,
		email:        email,
		resetLimiter: resetLimiter,
		clock:        clock,
		logger:       logger,
	}
}

// EnsureProfile returns the profile for an authenticated identity,
// creating it with defaults the first time the identity is seen. A
// concurrent create by another request is not an error; the winner's
// row is read back.
func (s *AccountService) EnsureProfile(ctx context.Context, id *identity.Identity) (*models.Profile, error) {
	profile, err := s.profiles.Get(ctx, id.UID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile = models.NewProfile(id.UID, id.Email, id.DisplayName, id.PhotoURL, s.clock.Now())
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return s.profiles.Get(ctx, id.UID)
		}
		return nil, fmt.Errorf("failed to provision profile: %w", err)
	}

	s.logger.Info("profile provisioned",
		slog.String("user_id", id.UID),
		slog.String("email", pkglogger.SanitizedEmail(id.Email)))

	return profile, nil
}

// ChangeLanguage persists a language preference. Switching to the
// gated language issues a passcode challenge instead and reports
// pending; the change lands through ConfirmLanguageChange.
func (s *AccountService) ChangeLanguage(ctx context.Context, uid, language string) (pending bool, err error) {
	if language == "" {
		return false, models.ErrBadRequest
	}

	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return false, fmt.Errorf("failed to load profile: %w", err)
	}

	if language == GatedLanguage && profile.Language != GatedLanguage {
		if err := s.challenges.Issue(ctx, uid, profile.Email, models.IntentLanguageChange); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := s.profiles.SetLanguage(ctx, uid, language, s.clock.Now()); err != nil {
		return false, fmt.Errorf("failed to set language: %w", err)
	}
	return false, nil
}

// ConfirmLanguageChange completes a gated language switch after the
// passcode verifies.
func (s *AccountService) ConfirmLanguageChange(ctx context.Context, uid, language, code string) error {
	if err := s.challenges.Verify(ctx, uid, models.IntentLanguageChange, code); err != nil {
		return err
	}

	if err := s.profiles.SetLanguage(ctx, uid, language, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	return nil
}

// RequestPasswordReset sends a reset email, capped per address per
// day. The cap exists because reset mail is an unauthenticated send
// path.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return models.ErrBadRequest
	}

	if s.resetLimiter != nil && !s.resetLimiter.Allow(email) {
		s.logger.Warn("password reset rate limited",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		return fmt.Errorf("reset already requested today: %w", models.ErrForbidden)
	}

	if err := s.email.SendPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("failed to send reset email: %w", models.ErrExternalCall)
	}

	return nil
}

// Profile returns the stored profile for a user id
func (s *AccountService) Profile(ctx context.Context, uid string) (*models.Profile, error) {
	return s.profiles.Get(ctx, uid)
}
