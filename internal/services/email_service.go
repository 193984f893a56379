package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/careerdeck/gatekeeper/internal/models"
)

// EmailSender is the outbound email side-effect port. Implementations
// must be safe for concurrent use. Delivery failures are fatal only
// where the flow's correctness depends on them (passcode delivery);
// everywhere else callers log and continue.
type EmailSender interface {
	SendPasscode(ctx context.Context, toEmail, code string, intent models.ActionIntent, expiresAt time.Time) error
	SendInvoice(ctx context.Context, toEmail string, tier models.PlanTier, amountMinorUnits int64, allowance models.Allowance) error
	SendResumeReady(ctx context.Context, toEmail, resumeID string) error
	SendPasswordReset(ctx context.Context, toEmail string) error
}

// AWSSESEmailSender sends emails using AWS SES
type AWSSESEmailSender struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailSender creates a new AWS SES email sender
func NewAWSSESEmailSender(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailSender{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendPasscode delivers a one-time passcode
func (s *AWSSESEmailSender) SendPasscode(ctx context.Context, toEmail, code string, intent models.ActionIntent, expiresAt time.Time) error {
	subject := "Your verification code"
	body := fmt.Sprintf(`Your one-time verification code is: %s

This code was requested for: %s
It expires at %s. If you did not request it, you can ignore this email.
`, code, intentDescription(intent), expiresAt.Format(time.RFC1123))

	return s.send(ctx, toEmail, subject, body)
}

// SendInvoice delivers the subscription invoice
func (s *AWSSESEmailSender) SendInvoice(ctx context.Context, toEmail string, tier models.PlanTier, amountMinorUnits int64, allowance models.Allowance) error {
	limit := "Unlimited"
	if !allowance.Unbounded {
		limit = fmt.Sprintf("%d applications", allowance.Limit)
	}

	subject := fmt.Sprintf("Subscription activated: %s plan", tier)
	body := fmt.Sprintf(`Thank you for subscribing.

Plan: %s
Amount: INR %.2f
Monthly applications: %s

This is an automated message. Please do not reply.
`, tier, float64(amountMinorUnits)/100, limit)

	return s.send(ctx, toEmail, subject, body)
}

// SendResumeReady confirms a paid resume generation
func (s *AWSSESEmailSender) SendResumeReady(ctx context.Context, toEmail, resumeID string) error {
	subject := "Your resume is ready"
	body := fmt.Sprintf(`Your resume has been generated and saved to your profile.

Reference: %s
`, resumeID)

	return s.send(ctx, toEmail, subject, body)
}

// SendPasswordReset delivers a password reset notice
func (s *AWSSESEmailSender) SendPasswordReset(ctx context.Context, toEmail string) error {
	subject := "Password reset requested"
	body := `A password reset was requested for your account.

Follow the reset link from the sign-in page to continue. If you did
not request this, no action is needed.
`

	return s.send(ctx, toEmail, subject, body)
}

func (s *AWSSESEmailSender) send(ctx context.Context, toEmail, subject, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("subject", subject),
		slog.String("message_id", *result.MessageId))

	return nil
}

func intentDescription(intent models.ActionIntent) string {
	switch intent {
	case models.IntentLogin:
		return "signing in"
	case models.IntentLanguageChange:
		return "changing your language"
	case models.IntentResume:
		return "generating your resume"
	case models.IntentSubscription:
		return "activating a subscription"
	case models.IntentPasswordReset:
		return "resetting your password"
	default:
		return string(intent)
	}
}
