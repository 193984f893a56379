package logger

import (
	"context"
	"log/slog"
	"time"
)

// PolicyEvent is a structured record of a single policy decision
type PolicyEvent struct {
	EventType string
	UserID    string
	IPAddress string
	UserAgent string
	Allowed   bool
	Reason    string
	Metadata  map[string]string
}

// AuditLogger emits policy decisions to the structured log stream.
// The durable audit trail lives in the database; this stream exists
// for live observation and alerting.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogLoginDecision logs the outcome of a login policy evaluation
func (al *AuditLogger) LogLoginDecision(event PolicyEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "login"),
		slog.String("event_type", event.EventType),
		slog.Bool("allowed", event.Allowed),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}

	if event.Allowed {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogChallengeEvent logs passcode issuance and verification outcomes
func (al *AuditLogger) LogChallengeEvent(eventType, subjectID, intent string, success bool) {
	attrs := []slog.Attr{
		slog.String("audit_type", "challenge"),
		slog.String("event_type", eventType),
		slog.String("subject_id", subjectID),
		slog.String("intent", intent),
		slog.Bool("success", success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogPaymentEvent logs payment gating and settlement outcomes
func (al *AuditLogger) LogPaymentEvent(eventType, userID string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "payment"),
		slog.String("event_type", eventType),
		slog.String("user_id", userID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
