package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/careerdeck/gatekeeper/internal/models"
	pkglogger "github.com/careerdeck/gatekeeper/pkg/logger"
)

// PaymentRepository defines the interface for payment record storage
type PaymentRepository interface {
	CreateIfAbsent(ctx context.Context, p *models.PaymentRecord) (bool, error)
	Get(ctx context.Context, paymentID string) (*models.PaymentRecord, error)
}

// SubscriptionService runs the paid plan-purchase pipeline: plan gate,
// payment time window, passcode step-up, hosted checkout, and the
// idempotent settlement callback that is the only place a plan ever
// changes.
type SubscriptionService struct {
	profiles    ProfileRepository
	payments    PaymentRepository
	registry    PlanRegistry
	challenges  *ChallengeService
	gateway     PaymentGateway
	email       EmailSender
	clock       models.Clock
	location    *time.Location
	windowStart int
	windowEnd   int
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewSubscriptionService creates a new SubscriptionService. Purchases
// are accepted while the local hour is inside [windowStart, windowEnd).
func NewSubscriptionService(
	profiles ProfileRepository,
	payments PaymentRepository,
	registry PlanRegistry,
	challenges *ChallengeService,
	gateway PaymentGateway,
	email EmailSender,
	clock models.Clock,
	location *time.Location,
	windowStart, windowEnd int,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *SubscriptionService {
	return &SubscriptionService{
		profiles:    profiles,
		payments:    payments,
		registry:    registry,
		challenges:  challenges,
		gateway:     gateway,
		email:       email,
		clock:       clock,
		location:    location,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// PaymentWindowReason is the denial reason recorded when a purchase is
// attempted outside the accepted window.
const PaymentWindowReason = "payments accepted only during the daily purchase window"

func (s *SubscriptionService) insidePaymentWindow(now time.Time) bool {
	hour := now.In(s.location).Hour()
	return hour >= s.windowStart && hour < s.windowEnd
}

// Start begins a subscription purchase: the tier must be purchasable,
// the purchase window open, and a fresh passcode is issued. The
// caller comes back through Confirm with the code.
func (s *SubscriptionService) Start(ctx context.Context, uid string, tier models.PlanTier) error {
	if !tier.Paid() {
		return fmt.Errorf("tier %q is not purchasable: %w", tier, models.ErrBadRequest)
	}

	if !s.insidePaymentWindow(s.clock.Now()) {
		return models.DeniedByPolicy(PaymentWindowReason)
	}

	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	return s.challenges.Issue(ctx, uid, profile.Email, models.IntentSubscription)
}

// Confirm verifies the passcode and opens a hosted checkout for the
// tier's price. No state changes here; entitlement waits for the
// gateway's success callback.
func (s *SubscriptionService) Confirm(ctx context.Context, uid string, tier models.PlanTier, code string) (*CheckoutSession, error) {
	if !tier.Paid() {
		return nil, fmt.Errorf("tier %q is not purchasable: %w", tier, models.ErrBadRequest)
	}

	if !s.insidePaymentWindow(s.clock.Now()) {
		return nil, models.DeniedByPolicy(PaymentWindowReason)
	}

	if err := s.challenges.Verify(ctx, uid, models.IntentSubscription, code); err != nil {
		return nil, err
	}

	def := s.registry.Definition(tier)
	session, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		AmountMinorUnits: def.PriceMinorUnits,
		Currency:         "INR",
		Description:      fmt.Sprintf("%s plan subscription", tier),
		Receipt:          uid,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkout: %w", err)
	}

	s.auditLogger.LogPaymentEvent("checkout_opened", uid, map[string]string{
		"tier":     string(tier),
		"order_id": session.OrderID,
	})

	return session, nil
}

// HandlePaymentSuccess settles a confirmed payment. The payment id is
// the record's primary key, so replaying the same callback inserts
// nothing and performs no further mutation.
func (s *SubscriptionService) HandlePaymentSuccess(ctx context.Context, paymentID, uid string, tier models.PlanTier) error {
	if paymentID == "" || !tier.Paid() {
		return models.ErrBadRequest
	}

	now := s.clock.Now()
	def := s.registry.Definition(tier)
	record := &models.PaymentRecord{
		PaymentID: paymentID,
		UserID:    uid,
		Plan:      tier,
		Purpose:   models.PaymentPurposeSubscription,
		Amount:    def.PriceMinorUnits,
		Status:    models.PaymentStatusSuccess,
		CreatedAt: now,
	}

	inserted, err := s.payments.CreateIfAbsent(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	if !inserted {
		s.logger.Info("duplicate payment callback ignored",
			slog.String("payment_id", paymentID),
			slog.String("user_id", uid))
		return nil
	}

	if err := s.profiles.SetPlan(ctx, uid, tier, now); err != nil {
		return fmt.Errorf("failed to activate plan: %w", err)
	}

	s.auditLogger.LogPaymentEvent("subscription_activated", uid, map[string]string{
		"tier":       string(tier),
		"payment_id": paymentID,
	})

	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		s.logger.Error("failed to load profile for invoice",
			slog.String("user_id", uid),
			slog.Any("error", err))
		return nil
	}
	allowance := def.Allowance(models.ActionMonthlyApplication)
	if err := s.email.SendInvoice(ctx, profile.Email, tier, def.PriceMinorUnits, allowance); err != nil {
		s.logger.Error("failed to send invoice email",
			slog.String("user_id", uid),
			slog.Any("error", err))
	}

	return nil
}

// HandlePaymentFailure records a failed payment attempt. Entitlements
// never change on this path.
func (s *SubscriptionService) HandlePaymentFailure(ctx context.Context, paymentID, uid string, tier models.PlanTier) error {
	if paymentID == "" {
		return models.ErrBadRequest
	}

	record := &models.PaymentRecord{
		PaymentID: paymentID,
		UserID:    uid,
		Plan:      tier,
		Purpose:   models.PaymentPurposeSubscription,
		Status:    models.PaymentStatusFailed,
		CreatedAt: s.clock.Now(),
	}

	if _, err := s.payments.CreateIfAbsent(ctx, record); err != nil {
		return fmt.Errorf("failed to record payment failure: %w", err)
	}

	s.auditLogger.LogPaymentEvent("payment_failed", uid, map[string]string{
		"payment_id": paymentID,
	})

	return nil
}
