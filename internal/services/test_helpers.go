package services

import (
	"context"
	"sync"
	"time"

	"github.com/careerdeck/gatekeeper/internal/identity"
	"github.com/careerdeck/gatekeeper/internal/models"
)

// MockLoginAttemptRepository implements LoginAttemptRepository for testing
type MockLoginAttemptRepository struct {
	RecordFunc     func(ctx context.Context, attempt *models.LoginAttempt) error
	ListByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]*models.LoginAttempt, error)

	mu       sync.Mutex
	Recorded []*models.LoginAttempt
}

func (m *MockLoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, attempt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded = append(m.Recorded, attempt)
	return nil
}

func (m *MockLoginAttemptRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.LoginAttempt, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return []*models.LoginAttempt{}, nil
}

// MockChallengeRepository implements ChallengeRepository with an
// in-memory map keyed by (subject, intent).
type MockChallengeRepository struct {
	PutFunc          func(ctx context.Context, c *models.Challenge) error
	GetFunc          func(ctx context.Context, subjectID string, intent models.ActionIntent) (*models.Challenge, error)
	MarkVerifiedFunc func(ctx context.Context, subjectID string, intent models.ActionIntent) error
	DeleteFunc       func(ctx context.Context, subjectID string, intent models.ActionIntent) error

	mu         sync.Mutex
	challenges map[string]*models.Challenge
}

func challengeKey(subjectID string, intent models.ActionIntent) string {
	return subjectID + "|" + string(intent)
}

func (m *MockChallengeRepository) Put(ctx context.Context, c *models.Challenge) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.challenges == nil {
		m.challenges = make(map[string]*models.Challenge)
	}
	cp := *c
	m.challenges[challengeKey(c.SubjectID, c.Intent)] = &cp
	return nil
}

func (m *MockChallengeRepository) Get(ctx context.Context, subjectID string, intent models.ActionIntent) (*models.Challenge, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, subjectID, intent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.challenges[challengeKey(subjectID, intent)]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockChallengeRepository) MarkVerified(ctx context.Context, subjectID string, intent models.ActionIntent) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, subjectID, intent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.challenges[challengeKey(subjectID, intent)]
	if !ok {
		return models.ErrNotFound
	}
	c.Verified = true
	return nil
}

func (m *MockChallengeRepository) Delete(ctx context.Context, subjectID string, intent models.ActionIntent) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, subjectID, intent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.challenges, challengeKey(subjectID, intent))
	return nil
}

// MockProfileRepository implements ProfileRepository for testing
type MockProfileRepository struct {
	GetFunc         func(ctx context.Context, uid string) (*models.Profile, error)
	CreateFunc      func(ctx context.Context, p *models.Profile) error
	SetPlanFunc     func(ctx context.Context, uid string, tier models.PlanTier, subscribedAt time.Time) error
	SetLanguageFunc func(ctx context.Context, uid, language string, now time.Time) error
	SetResumeFunc   func(ctx context.Context, uid, resumeID string, now time.Time) error

	mu       sync.Mutex
	Profiles map[string]*models.Profile
}

func (m *MockProfileRepository) Get(ctx context.Context, uid string) (*models.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, uid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[uid]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Profiles == nil {
		m.Profiles = make(map[string]*models.Profile)
	}
	if _, exists := m.Profiles[p.UID]; exists {
		return models.ErrConflict
	}
	cp := *p
	m.Profiles[p.UID] = &cp
	return nil
}

func (m *MockProfileRepository) SetPlan(ctx context.Context, uid string, tier models.PlanTier, subscribedAt time.Time) error {
	if m.SetPlanFunc != nil {
		return m.SetPlanFunc(ctx, uid, tier, subscribedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[uid]
	if !ok {
		return models.ErrNotFound
	}
	p.Plan = tier
	p.SubscribedAt = &subscribedAt
	return nil
}

func (m *MockProfileRepository) SetLanguage(ctx context.Context, uid, language string, now time.Time) error {
	if m.SetLanguageFunc != nil {
		return m.SetLanguageFunc(ctx, uid, language, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[uid]
	if !ok {
		return models.ErrNotFound
	}
	p.Language = language
	return nil
}

func (m *MockProfileRepository) SetResume(ctx context.Context, uid, resumeID string, now time.Time) error {
	if m.SetResumeFunc != nil {
		return m.SetResumeFunc(ctx, uid, resumeID, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[uid]
	if !ok {
		return models.ErrNotFound
	}
	p.HasResume = true
	p.ResumeID = &resumeID
	return nil
}

// MockActivityRepository implements ActivityRepository for testing
type MockActivityRepository struct {
	CountSinceFunc        func(ctx context.Context, uid string, kind models.MeteredAction, since time.Time) (int, error)
	CreatePostFunc        func(ctx context.Context, p *models.Post) error
	CreateApplicationFunc func(ctx context.Context, a *models.Application) error

	mu           sync.Mutex
	Posts        []*models.Post
	Applications []*models.Application
}

func (m *MockActivityRepository) CountSince(ctx context.Context, uid string, kind models.MeteredAction, since time.Time) (int, error) {
	if m.CountSinceFunc != nil {
		return m.CountSinceFunc(ctx, uid, kind, since)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	switch kind {
	case models.ActionDailyPost:
		for _, p := range m.Posts {
			if p.UserID == uid && !p.CreatedAt.Before(since) {
				count++
			}
		}
	case models.ActionMonthlyApplication:
		for _, a := range m.Applications {
			if a.UserID == uid && !a.CreatedAt.Before(since) {
				count++
			}
		}
	}
	return count, nil
}

func (m *MockActivityRepository) CreatePost(ctx context.Context, p *models.Post) error {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.Posts = append(m.Posts, &cp)
	return nil
}

func (m *MockActivityRepository) CreateApplication(ctx context.Context, a *models.Application) error {
	if m.CreateApplicationFunc != nil {
		return m.CreateApplicationFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.Applications = append(m.Applications, &cp)
	return nil
}

// MockPaymentRepository implements PaymentRepository for testing
type MockPaymentRepository struct {
	CreateIfAbsentFunc func(ctx context.Context, p *models.PaymentRecord) (bool, error)
	GetFunc            func(ctx context.Context, paymentID string) (*models.PaymentRecord, error)

	mu       sync.Mutex
	Payments map[string]*models.PaymentRecord
}

func (m *MockPaymentRepository) CreateIfAbsent(ctx context.Context, p *models.PaymentRecord) (bool, error) {
	if m.CreateIfAbsentFunc != nil {
		return m.CreateIfAbsentFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Payments == nil {
		m.Payments = make(map[string]*models.PaymentRecord)
	}
	if _, exists := m.Payments[p.PaymentID]; exists {
		return false, nil
	}
	cp := *p
	m.Payments[p.PaymentID] = &cp
	return true, nil
}

func (m *MockPaymentRepository) Get(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, paymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Payments[paymentID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// MockResumeRepository implements ResumeRepository for testing
type MockResumeRepository struct {
	CreateFunc    func(ctx context.Context, resume *models.Resume) error
	GetByUserFunc func(ctx context.Context, uid string) (*models.Resume, error)

	mu      sync.Mutex
	Resumes []*models.Resume
}

func (m *MockResumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, resume)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *resume
	m.Resumes = append(m.Resumes, &cp)
	return nil
}

func (m *MockResumeRepository) GetByUser(ctx context.Context, uid string) (*models.Resume, error) {
	if m.GetByUserFunc != nil {
		return m.GetByUserFunc(ctx, uid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Resumes) - 1; i >= 0; i-- {
		if m.Resumes[i].UserID == uid {
			cp := *m.Resumes[i]
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendPasscodeFunc      func(ctx context.Context, toEmail, code string, intent models.ActionIntent, expiresAt time.Time) error
	SendInvoiceFunc       func(ctx context.Context, toEmail string, tier models.PlanTier, amountMinorUnits int64, allowance models.Allowance) error
	SendResumeReadyFunc   func(ctx context.Context, toEmail, resumeID string) error
	SendPasswordResetFunc func(ctx context.Context, toEmail string) error

	mu        sync.Mutex
	Passcodes []string
	Invoices  int
	Resets    int
}

func (m *MockEmailSender) SendPasscode(ctx context.Context, toEmail, code string, intent models.ActionIntent, expiresAt time.Time) error {
	if m.SendPasscodeFunc != nil {
		return m.SendPasscodeFunc(ctx, toEmail, code, intent, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Passcodes = append(m.Passcodes, code)
	return nil
}

func (m *MockEmailSender) SendInvoice(ctx context.Context, toEmail string, tier models.PlanTier, amountMinorUnits int64, allowance models.Allowance) error {
	if m.SendInvoiceFunc != nil {
		return m.SendInvoiceFunc(ctx, toEmail, tier, amountMinorUnits, allowance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invoices++
	return nil
}

func (m *MockEmailSender) SendResumeReady(ctx context.Context, toEmail, resumeID string) error {
	if m.SendResumeReadyFunc != nil {
		return m.SendResumeReadyFunc(ctx, toEmail, resumeID)
	}
	return nil
}

func (m *MockEmailSender) SendPasswordReset(ctx context.Context, toEmail string) error {
	if m.SendPasswordResetFunc != nil {
		return m.SendPasswordResetFunc(ctx, toEmail)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets++
	return nil
}

// LastPasscode returns the most recently sent code, or ""
func (m *MockEmailSender) LastPasscode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Passcodes) == 0 {
		return ""
	}
	return m.Passcodes[len(m.Passcodes)-1]
}

// MockPaymentGateway implements PaymentGateway for testing
type MockPaymentGateway struct {
	CreateCheckoutFunc func(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	mu       sync.Mutex
	Requests []CheckoutRequest
}

func (m *MockPaymentGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	return &CheckoutSession{OrderID: "order_test", CheckoutURL: "https://checkout.test/order_test"}, nil
}

// MockAuthenticator implements identity.Authenticator for testing
type MockAuthenticator struct {
	SignInFunc func(ctx context.Context, credential string) (*identity.Identity, error)

	mu    sync.Mutex
	Calls int
}

func (m *MockAuthenticator) SignIn(ctx context.Context, credential string) (*identity.Identity, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, credential)
	}
	return &identity.Identity{UID: "user-1", Email: "user@example.com", DisplayName: "Test User"}, nil
}

// allowAllLimiter permits every issuance in tests
type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

// denyAllLimiter rejects every issuance in tests
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }
