package audit

import (
	"context"
	"log/slog"
	"time"
)

// Actions and failure reasons recorded by the auth flow.
const (
	ActionLoginSuccess   = "login_success"
	ActionLoginFailed    = "login_failed"
	ActionTokenRefreshed = "token_refreshed"
	ActionRefreshDenied  = "refresh_denied"

	ReasonMissingCredentials = "missing_credentials"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonAccountLocked      = "account_locked"
	ReasonAccountDisabled    = "account_disabled"
)

// Entry is one audit record. Failure entries carry the reason; success
// entries carry the resolved role and permission count.
type Entry struct {
	Action          string    `json:"action"`
	Reason          string    `json:"reason,omitempty"`
	Username        string    `json:"username"`
	Role            string    `json:"role,omitempty"`
	PermissionCount int       `json:"permission_count,omitempty"`
	ClientIP        string    `json:"client_ip,omitempty"`
	UserAgent       string    `json:"user_agent,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Recorder is the fire-and-forget audit sink. Callers treat failures as
// non-fatal; a broken sink must never break a login.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// SlogRecorder writes audit entries to the application log. Used directly in
// environments without a message broker, and as documentation of the entry
// shape everywhere else.
type SlogRecorder struct {
	logger *slog.Logger
}

func NewSlogRecorder(logger *slog.Logger) *SlogRecorder {
	return &SlogRecorder{logger: logger.With("component", "audit")}
}

func (r *SlogRecorder) Record(ctx context.Context, entry Entry) error {
	r.logger.InfoContext(ctx, entry.Action,
		"reason", entry.Reason,
		"username", entry.Username,
		"role", entry.Role,
		"permission_count", entry.PermissionCount,
		"client_ip", entry.ClientIP,
		"user_agent", entry.UserAgent,
		"occurred_at", entry.OccurredAt,
	)
	return nil
}
