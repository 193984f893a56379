package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/careerdeck/gatekeeper/internal/identity"
	"github.com/careerdeck/gatekeeper/internal/models"
)

// ProfileProvisioner resolves an authenticated identity to its
// platform profile, creating one with defaults on first sight.
type ProfileProvisioner interface {
	EnsureProfile(ctx context.Context, id *identity.Identity) (*models.Profile, error)
}

// LoginStatus is the terminal state of a login evaluation
type LoginStatus string

const (
	LoginAllowed    LoginStatus = "allowed"
	LoginPendingOTP LoginStatus = "pending_otp"
)

// LoginRequest carries everything the policy needs to evaluate an
// attempt. The user agent and IP come from the transport layer; the
// credential is opaque to the policy and only handed to the
// authenticator.
type LoginRequest struct {
	Credential string
	UserAgent  string
	IPAddress  string
}

// LoginResult is the outcome of a permitted evaluation. Token is set
// only when Status is LoginAllowed.
type LoginResult struct {
	Status  LoginStatus
	Token   string
	Profile *models.Profile
}

// LoginService evaluates the login policy: the mobile time gate runs
// before authentication, the browser step-up after it. Every decision
// the policy makes is recorded through the audit service; failures of
// the authenticator itself are not policy decisions and leave no
// audit row.
type LoginService struct {
	authenticator identity.Authenticator
	profiles      ProfileProvisioner
	audit         *AuditService
	challenges    *ChallengeService
	sessions      *identity.SessionManager
	clock         models.Clock
	location      *time.Location
	windowStart   int
	windowEnd     int
	logger        *slog.Logger
}

// NewLoginService creates a new LoginService. The mobile window is
// [windowStart, windowEnd) in hours local to location.
func NewLoginService(
	authenticator identity.Authenticator,
	profiles ProfileProvisioner,
	audit *AuditService,
	challenges *ChallengeService,
	sessions *identity.SessionManager,
	clock models.Clock,
	location *time.Location,
	windowStart, windowEnd int,
	logger *slog.Logger,
) *LoginService {
	return &LoginService{
		authenticator: authenticator,
		profiles:      profiles,
		audit:         audit,
		challenges:    challenges,
		sessions:      sessions,
		clock:         clock,
		location:      location,
		windowStart:   windowStart,
		windowEnd:     windowEnd,
		logger:        logger,
	}
}

// Login runs the full policy for one attempt.
//
// Mobile devices are gated on local time before the credential is
// ever checked; a blocked mobile attempt is recorded with the unknown
// user id because identity was never established. Chrome sessions
// authenticate first, then are parked pending a one-time passcode
// with no session token issued. Everything else authenticates and
// receives a token directly.
func (s *LoginService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	env := models.DetectEnvironment(req.UserAgent)
	now := s.clock.Now()

	if env.Device == models.DeviceMobile && !s.insideMobileWindow(now) {
		attempt := s.newAttempt(models.UnknownUserID, env, req.IPAddress, now)
		attempt.Status = models.LoginStatusBlocked
		attempt.Reason = models.LoginReasonMobileWindow
		if err := s.audit.RecordAttempt(ctx, attempt); err != nil {
			return nil, err
		}
		return nil, models.DeniedByPolicy(models.LoginReasonMobileWindow)
	}

	id, err := s.authenticator.SignIn(ctx, req.Credential)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	profile, err := s.profiles.EnsureProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if env.Browser == models.BrowserChrome {
		if err := s.challenges.Issue(ctx, id.UID, id.Email, models.IntentLogin); err != nil {
			return nil, err
		}

		attempt := s.newAttempt(id.UID, env, req.IPAddress, now)
		attempt.Status = models.LoginStatusBlocked
		attempt.Reason = models.LoginReasonOTPRequired
		if err := s.audit.RecordAttempt(ctx, attempt); err != nil {
			return nil, err
		}

		return &LoginResult{Status: LoginPendingOTP, Profile: profile}, nil
	}

	attempt := s.newAttempt(id.UID, env, req.IPAddress, now)
	attempt.Status = models.LoginStatusSuccess
	attempt.Reason = models.LoginReasonAllowed
	if err := s.audit.RecordAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(id.UID, id.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	return &LoginResult{Status: LoginAllowed, Token: token, Profile: profile}, nil
}

// CompleteLogin finishes a Chrome step-up. The credential is checked
// again so a stolen passcode alone cannot mint a session, then the
// passcode is verified against the pending login challenge.
func (s *LoginService) CompleteLogin(ctx context.Context, req LoginRequest, code string) (*LoginResult, error) {
	env := models.DetectEnvironment(req.UserAgent)
	now := s.clock.Now()

	id, err := s.authenticator.SignIn(ctx, req.Credential)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if err := s.challenges.Verify(ctx, id.UID, models.IntentLogin, code); err != nil {
		return nil, err
	}

	profile, err := s.profiles.EnsureProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	attempt := s.newAttempt(id.UID, env, req.IPAddress, now)
	attempt.Status = models.LoginStatusSuccess
	attempt.Reason = models.LoginReasonOTPCompleted
	if err := s.audit.RecordAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(id.UID, id.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	return &LoginResult{Status: LoginAllowed, Token: token, Profile: profile}, nil
}

// insideMobileWindow reports whether the local hour falls inside
// [windowStart, windowEnd).
func (s *LoginService) insideMobileWindow(now time.Time) bool {
	hour := now.In(s.location).Hour()
	return hour >= s.windowStart && hour < s.windowEnd
}

func (s *LoginService) newAttempt(userID string, env models.Environment, ip string, now time.Time) *models.LoginAttempt {
	return &models.LoginAttempt{
		UserID:    userID,
		Browser:   env.Browser,
		OS:        env.OS,
		Device:    env.Device,
		IPAddress: ip,
		LoginTime: now,
	}
}
