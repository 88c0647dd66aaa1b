package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	pkgctx "github.com/simulado-cea/simulado-service/internal/pkg/context"
)

// Logger provides structured audit logging for security-relevant business events.
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Event logs a service-level action with its result fields. Actions ending in an error
// result are logged at warn level.
func (l *Logger) Event(action string, fields map[string]string) {
	ev := l.log.Info()
	if fields["result"] == "error" {
		ev = l.log.Warn()
	}
	ev = ev.Str("action", action)
	for k, v := range fields {
		if k == "email" {
			v = MaskEmail(v)
		}
		ev = ev.Str(k, v)
	}
	ev.Msg("audit event")
}

// AdminDecision logs the outcome of an admin authorization check.
// source is the check that granted access, or "none".
func (l *Logger) AdminDecision(ctx context.Context, userID, email string, granted bool, source string) {
	ev := l.log.Info()
	if !granted {
		ev = l.log.Warn()
	}
	ev.Str("action", "admin_authorization").
		Str("user_id", userID).
		Str("email", MaskEmail(email)).
		Bool("granted", granted).
		Str("source", source).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Admin authorization decided")
}

// LoginSuccess logs a successful login
func (l *Logger) LoginSuccess(ctx context.Context, userID, email, ip string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("email", MaskEmail(email)).
		Str("ip", ip).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User logged in successfully")
}

// LoginFailed logs a failed login attempt
func (l *Logger) LoginFailed(ctx context.Context, email, ip, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", MaskEmail(email)).
		Str("ip", ip).
		Str("reason", reason).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

func (l *Logger) Logout(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "logout").
		Str("user_id", userID).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User logged out")
}

// MaskEmail partially masks email for privacy in logs
func MaskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
