package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/google/uuid"
)

// ActivityRepository defines the interface for metered activity storage
type ActivityRepository interface {
	CountSince(ctx context.Context, uid string, kind models.MeteredAction, since time.Time) (int, error)
	CreatePost(ctx context.Context, p *models.Post) error
	CreateApplication(ctx context.Context, a *models.Application) error
}

// GrantRule may widen the plan baseline for a profile and action
// kind. Rules never narrow an allowance.
type GrantRule func(profile *models.Profile, kind models.MeteredAction, base models.Allowance) models.Allowance

// postGrantFriendsThreshold is the friends count above which posting
// becomes unlimited regardless of plan.
const postGrantFriendsThreshold = 10

// DefaultGrantRules returns the production grant chain: the onboarding
// grant for brand-new profiles and the social grant for well-connected
// ones, both on daily posts.
func DefaultGrantRules() []GrantRule {
	return []GrantRule{
		func(p *models.Profile, kind models.MeteredAction, base models.Allowance) models.Allowance {
			if kind == models.ActionDailyPost && p.FriendsCount == models.OnboardingFriendsCount {
				return base.AtLeast(models.Bounded(2))
			}
			return base
		},
		func(p *models.Profile, kind models.MeteredAction, base models.Allowance) models.Allowance {
			if kind == models.ActionDailyPost && p.FriendsCount > postGrantFriendsThreshold {
				return models.Unlimited()
			}
			return base
		},
	}
}

// QuotaService enforces per-period allowances over committed activity
// rows. There are no counters to drift: usage is always a count of
// the rows that actually exist in the current period.
type QuotaService struct {
	activity ActivityRepository
	profiles ProfileRepository
	registry PlanRegistry
	rules    []GrantRule
	clock    models.Clock
	location *time.Location
	logger   *slog.Logger
}

// NewQuotaService creates a new QuotaService
func NewQuotaService(activity ActivityRepository, profiles ProfileRepository, registry PlanRegistry, rules []GrantRule, clock models.Clock, location *time.Location, logger *slog.Logger) *QuotaService {
	return &QuotaService{
		activity: activity,
		profiles: profiles,
		registry: registry,
		rules:    rules,
		clock:    clock,
		location: location,
		logger:   logger,
	}
}

// Allowance resolves the effective allowance for a profile and action
// kind: the plan's baseline, widened by the configured grant rules.
func (s *QuotaService) Allowance(profile *models.Profile, kind models.MeteredAction) models.Allowance {
	allowance := s.registry.Definition(profile.Plan).Allowance(kind)
	for _, rule := range s.rules {
		allowance = rule(profile, kind, allowance)
	}
	return allowance
}

// Usage returns the number of committed actions of the given kind in
// the current period.
func (s *QuotaService) Usage(ctx context.Context, uid string, kind models.MeteredAction) (int, error) {
	since := kind.PeriodStart(s.clock.Now(), s.location)
	used, err := s.activity.CountSince(ctx, uid, kind, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count usage: %w", err)
	}
	return used, nil
}

// Check verifies that one more action of the given kind is permitted
// for the profile. Returns ErrQuotaExceeded when the period allowance
// is spent.
func (s *QuotaService) Check(ctx context.Context, profile *models.Profile, kind models.MeteredAction) error {
	allowance := s.Allowance(profile, kind)
	if allowance.Unbounded {
		return nil
	}

	used, err := s.Usage(ctx, profile.UID, kind)
	if err != nil {
		return err
	}

	if !allowance.Permits(used) {
		s.logger.Info("quota exhausted",
			slog.String("user_id", profile.UID),
			slog.String("kind", string(kind)),
			slog.Int("used", used),
			slog.Int("limit", allowance.Limit))
		return fmt.Errorf("%s limit of %d reached: %w", kind, allowance.Limit, models.ErrQuotaExceeded)
	}

	return nil
}

// CreatePost commits a post for the user if the daily allowance
// permits one more.
func (s *QuotaService) CreatePost(ctx context.Context, uid, caption, mediaURL string) (*models.Post, error) {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.Check(ctx, profile, models.ActionDailyPost); err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        uuid.New(),
		UserID:    uid,
		Caption:   caption,
		MediaURL:  mediaURL,
		CreatedAt: s.clock.Now(),
	}
	if err := s.activity.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// SubmitApplication commits a job application for the user if the
// monthly allowance permits one more.
func (s *QuotaService) SubmitApplication(ctx context.Context, uid, listingID string) (*models.Application, error) {
	if listingID == "" {
		return nil, models.ErrBadRequest
	}

	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.Check(ctx, profile, models.ActionMonthlyApplication); err != nil {
		return nil, err
	}

	application := &models.Application{
		ID:        uuid.New(),
		UserID:    uid,
		ListingID: listingID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.activity.CreateApplication(ctx, application); err != nil {
		return nil, fmt.Errorf("failed to submit application: %w", err)
	}

	return application, nil
}
