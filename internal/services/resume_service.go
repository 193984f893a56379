package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/careerdeck/gatekeeper/internal/models"
	pkglogger "github.com/careerdeck/gatekeeper/pkg/logger"
	"github.com/google/uuid"
)

// ResumeRepository defines the interface for resume storage
type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	GetByUser(ctx context.Context, uid string) (*models.Resume, error)
}

// ResumePriceMinorUnits is the flat resume generation price in paise
const ResumePriceMinorUnits = 5000

// ResumeDraft carries the user-supplied resume content held until the
// payment settles.
type ResumeDraft struct {
	Name          string
	Qualification string
	Experience    string
	Skills        string
}

// ResumeService runs the paid resume-generation pipeline. It mirrors
// the subscription pipeline with one extra plan gate: the free tier
// cannot buy resume generation at all.
type ResumeService struct {
	profiles    ProfileRepository
	payments    PaymentRepository
	resumes     ResumeRepository
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

// NewResumeService creates a new ResumeService
func NewResumeService(
	profiles ProfileRepository,
	payments PaymentRepository,
	resumes ResumeRepository,
	challenges *ChallengeService,
	gateway PaymentGateway,
	email EmailSender,
	clock models.Clock,
	location *time.Location,
	windowStart, windowEnd int,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *ResumeService {
	return &ResumeService{
		profiles:    profiles,
		payments:    payments,
		resumes:     resumes,
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

func (s *ResumeService) insidePaymentWindow(now time.Time) bool {
	hour := now.In(s.location).Hour()
	return hour >= s.windowStart && hour < s.windowEnd
}

// Start begins a resume purchase. Free-tier profiles are rejected
// before any side effect.
func (s *ResumeService) Start(ctx context.Context, uid string) error {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if !profile.Plan.Paid() {
		return fmt.Errorf("resume generation requires a paid plan: %w", models.ErrPlanRequired)
	}

	if !s.insidePaymentWindow(s.clock.Now()) {
		return models.DeniedByPolicy(PaymentWindowReason)
	}

	return s.challenges.Issue(ctx, uid, profile.Email, models.IntentResume)
}

// Confirm verifies the passcode and opens checkout for the flat
// resume price.
func (s *ResumeService) Confirm(ctx context.Context, uid, code string) (*CheckoutSession, error) {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if !profile.Plan.Paid() {
		return nil, fmt.Errorf("resume generation requires a paid plan: %w", models.ErrPlanRequired)
	}

	if !s.insidePaymentWindow(s.clock.Now()) {
		return nil, models.DeniedByPolicy(PaymentWindowReason)
	}

	if err := s.challenges.Verify(ctx, uid, models.IntentResume, code); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		AmountMinorUnits: ResumePriceMinorUnits,
		Currency:         "INR",
		Description:      "resume generation",
		Receipt:          uid,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkout: %w", err)
	}

	s.auditLogger.LogPaymentEvent("checkout_opened", uid, map[string]string{
		"purpose":  models.PaymentPurposeResume,
		"order_id": session.OrderID,
	})

	return session, nil
}

// HandlePaymentSuccess settles a confirmed resume payment: the resume
// row is written and the profile merged. A replayed callback inserts
// nothing and performs no further mutation.
func (s *ResumeService) HandlePaymentSuccess(ctx context.Context, paymentID, uid string, draft ResumeDraft) (*models.Resume, error) {
	if paymentID == "" {
		return nil, models.ErrBadRequest
	}

	now := s.clock.Now()
	record := &models.PaymentRecord{
		PaymentID: paymentID,
		UserID:    uid,
		Purpose:   models.PaymentPurposeResume,
		Amount:    ResumePriceMinorUnits,
		Status:    models.PaymentStatusSuccess,
		CreatedAt: now,
	}

	inserted, err := s.payments.CreateIfAbsent(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if !inserted {
		s.logger.Info("duplicate payment callback ignored",
			slog.String("payment_id", paymentID),
			slog.String("user_id", uid))
		return s.resumes.GetByUser(ctx, uid)
	}

	resume := &models.Resume{
		ID:            uuid.New(),
		UserID:        uid,
		Name:          draft.Name,
		Qualification: draft.Qualification,
		Experience:    draft.Experience,
		Skills:        draft.Skills,
		CreatedAt:     now,
	}
	if err := s.resumes.Create(ctx, resume); err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	if err := s.profiles.SetResume(ctx, uid, resume.ID.String(), now); err != nil {
		return nil, fmt.Errorf("failed to merge resume into profile: %w", err)
	}

	s.auditLogger.LogPaymentEvent("resume_generated", uid, map[string]string{
		"payment_id": paymentID,
		"resume_id":  resume.ID.String(),
	})

	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		s.logger.Error("failed to load profile for confirmation email",
			slog.String("user_id", uid),
			slog.Any("error", err))
		return resume, nil
	}
	if err := s.email.SendResumeReady(ctx, profile.Email, resume.ID.String()); err != nil {
		s.logger.Error("failed to send resume confirmation",
			slog.String("user_id", uid),
			slog.Any("error", err))
	}

	return resume, nil
}

// Resume returns the user's most recent generated resume
func (s *ResumeService) Resume(ctx context.Context, uid string) (*models.Resume, error) {
	return s.resumes.GetByUser(ctx, uid)
}
