// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/campushub/internal/app/store/audit"
	"github.com/dalemusser/campushub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration. Each field takes one of
// "all" (MongoDB + zap), "db", "log" or "off".
type Config struct {
	Auth  string
	Admin string
}

// Logger writes audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if (setting == "all" || setting == "log") && l.zapLog != nil {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, category, eventType string, success bool) audit.Event {
	ev := audit.Event{Category: category, EventType: eventType, Success: success}
	if r != nil {
		ev.IP = ratelimit.ClientIP(r)
		ev.UserAgent = r.UserAgent()
	}
	return ev
}

// --- Authentication Events ---

// Registered logs a new self-service account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, email string) {
	ev := fromRequest(r, audit.CategoryAuth, audit.EventRegistered, true)
	ev.Subject = email
	l.Log(ctx, ev)
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, email, role string) {
	ev := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	ev.Subject = email
	ev.Details = map[string]string{"role": role}
	l.Log(ctx, ev)
}

// LoginFailed logs a failed login. eventType is one of the
// audit.EventLoginFailed* constants.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, eventType, reason string) {
	ev := fromRequest(r, audit.CategoryAuth, eventType, false)
	ev.Subject = email
	ev.FailureReason = reason
	l.Log(ctx, ev)
}

// TokenRefreshed logs an access token minted from a refresh token.
func (l *Logger) TokenRefreshed(ctx context.Context, r *http.Request, email string) {
	ev := fromRequest(r, audit.CategoryAuth, audit.EventTokenRefreshed, true)
	ev.Subject = email
	l.Log(ctx, ev)
}

// VerificationCodeSent logs an OTP dispatch. resendCount is 0 for the
// first code.
func (l *Logger) VerificationCodeSent(ctx context.Context, r *http.Request, email string, resendCount int) {
	typ := audit.EventVerificationCodeSent
	if resendCount > 0 {
		typ = audit.EventVerificationCodeResent
	}
	ev := fromRequest(r, audit.CategoryAuth, typ, true)
	ev.Subject = email
	ev.Details = map[string]string{"resend_count": strconv.Itoa(resendCount)}
	l.Log(ctx, ev)
}

// VerificationResult logs an OTP check.
func (l *Logger) VerificationResult(ctx context.Context, r *http.Request, email string, ok bool, reason string) {
	typ := audit.EventVerificationSucceeded
	if !ok {
		typ = audit.EventVerificationFailed
	}
	ev := fromRequest(r, audit.CategoryAuth, typ, ok)
	ev.Subject = email
	ev.FailureReason = reason
	l.Log(ctx, ev)
}

// --- Admin Events ---

// RoleChanged logs a role reassignment.
func (l *Logger) RoleChanged(ctx context.Context, r *http.Request, actor, target, from, to string) {
	ev := fromRequest(r, audit.CategoryAdmin, audit.EventRoleChanged, true)
	ev.Actor = actor
	ev.Subject = target
	ev.Details = map[string]string{"from": from, "to": to}
	l.Log(ctx, ev)
}

// UserUpdated logs a profile update made by someone other than the owner.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actor, target, fields string) {
	ev := fromRequest(r, audit.CategoryAdmin, audit.EventUserUpdated, true)
	ev.Actor = actor
	ev.Subject = target
	ev.Details = map[string]string{"fields_changed": fields}
	l.Log(ctx, ev)
}

// EventDeleted logs a soft delete of an event.
func (l *Logger) EventDeleted(ctx context.Context, r *http.Request, actor, eventID string) {
	ev := fromRequest(r, audit.CategoryAdmin, audit.EventEventDeleted, true)
	ev.Actor = actor
	ev.Subject = eventID
	l.Log(ctx, ev)
}

// PostDeleted logs a soft delete of a post. flagged marks moderation
// removals from the flagged queue.
func (l *Logger) PostDeleted(ctx context.Context, r *http.Request, actor, postID string, flagged bool, savedRefsRemoved int64) {
	typ := audit.EventPostDeleted
	if flagged {
		typ = audit.EventFlaggedPostPurged
	}
	ev := fromRequest(r, audit.CategoryAdmin, typ, true)
	ev.Actor = actor
	ev.Subject = postID
	ev.Details = map[string]string{"saved_refs_removed": strconv.FormatInt(savedRefsRemoved, 10)}
	l.Log(ctx, ev)
}

// AdminBootstrapped logs creation of the default administrator at startup.
func (l *Logger) AdminBootstrapped(ctx context.Context, email string) {
	ev := fromRequest(nil, audit.CategoryAdmin, audit.EventAdminBootstrapped, true)
	ev.Subject = email
	l.Log(ctx, ev)
}
