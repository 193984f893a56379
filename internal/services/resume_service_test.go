package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/careerdeck/gatekeeper/internal/models"
	pkglogger "github.com/careerdeck/gatekeeper/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resumeFixture struct {
	svc      *ResumeService
	profiles *MockProfileRepository
	payments *MockPaymentRepository
	resumes  *MockResumeRepository
	gateway  *MockPaymentGateway
	email    *MockEmailSender
}

func newResumeFixture(clock models.Clock, profile *models.Profile) *resumeFixture {
	logger := slog.Default()
	auditLogger := pkglogger.NewAuditLogger(logger)

	profiles := &MockProfileRepository{Profiles: map[string]*models.Profile{profile.UID: profile}}
	payments := &MockPaymentRepository{}
	resumes := &MockResumeRepository{}
	gateway := &MockPaymentGateway{}
	email := &MockEmailSender{}
	challenges := NewChallengeService(&MockChallengeRepository{}, email, nil, clock, logger, auditLogger)

	svc := NewResumeService(profiles, payments, resumes, challenges, gateway, email,
		clock, testZone, 10, 11, logger, auditLogger)
	return &resumeFixture{svc: svc, profiles: profiles, payments: payments, resumes: resumes, gateway: gateway, email: email}
}

func TestResumeService_FreeTierRejected(t *testing.T) {
	f := newResumeFixture(istClock(10), testProfile(models.PlanFree, 5))

	err := f.svc.Start(context.Background(), "user-1")
	assert.ErrorIs(t, err, models.ErrPlanRequired)
	assert.Empty(t, f.email.Passcodes)
}

func TestResumeService_OutsideWindowDenied(t *testing.T) {
	f := newResumeFixture(istClock(14), testProfile(models.PlanBronze, 5))

	err := f.svc.Start(context.Background(), "user-1")
	assert.ErrorIs(t, err, models.ErrPolicyDenied)
}

func TestResumeService_ConfirmOpensCheckoutAtFlatPrice(t *testing.T) {
	f := newResumeFixture(istClock(10), testProfile(models.PlanSilver, 5))

	require.NoError(t, f.svc.Start(context.Background(), "user-1"))
	code := f.email.LastPasscode()

	session, err := f.svc.Confirm(context.Background(), "user-1", code)
	require.NoError(t, err)
	assert.NotEmpty(t, session.CheckoutURL)

	require.Len(t, f.gateway.Requests, 1)
	assert.Equal(t, int64(ResumePriceMinorUnits), f.gateway.Requests[0].AmountMinorUnits)
}

func TestResumeService_PaymentSuccess_WritesResumeAndMergesProfile(t *testing.T) {
	f := newResumeFixture(istClock(10), testProfile(models.PlanSilver, 5))

	draft := ResumeDraft{Name: "Test User", Qualification: "BSc", Experience: "2 years", Skills: "Go, SQL"}
	resume, err := f.svc.HandlePaymentSuccess(context.Background(), "pay_r1", "user-1", draft)
	require.NoError(t, err)
	require.NotNil(t, resume)
	assert.Equal(t, "Test User", resume.Name)

	profile, err := f.profiles.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, profile.HasResume)
	require.NotNil(t, profile.ResumeID)
	assert.Equal(t, resume.ID.String(), *profile.ResumeID)
}

func TestResumeService_DuplicateCallback_SingleResume(t *testing.T) {
	f := newResumeFixture(istClock(10), testProfile(models.PlanSilver, 5))

	draft := ResumeDraft{Name: "Test User"}
	first, err := f.svc.HandlePaymentSuccess(context.Background(), "pay_r1", "user-1", draft)
	require.NoError(t, err)

	second, err := f.svc.HandlePaymentSuccess(context.Background(), "pay_r1", "user-1", draft)
	require.NoError(t, err)

	assert.Len(t, f.resumes.Resumes, 1)
	assert.Equal(t, first.ID, second.ID)
}
