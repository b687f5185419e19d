package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rackatlas/inventory-api/internal/auth/audit"
	"github.com/rackatlas/inventory-api/internal/auth/domain"
	"github.com/rackatlas/inventory-api/internal/auth/lockout"
	"github.com/rackatlas/inventory-api/internal/auth/password"
	"github.com/rackatlas/inventory-api/internal/auth/repository"
	"github.com/rackatlas/inventory-api/internal/auth/token"
)

// ClientContext carries per-request client metadata for the audit trail.
type ClientContext struct {
	IP        string
	UserAgent string
}

// LoginResult is returned to the HTTP layer on successful authentication.
type LoginResult struct {
	Token     string
	User      domain.UserSummary
	ExpiresIn time.Duration
}

// CreateUserInput is the admin user-provisioning request.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// AuthService orchestrates credential lookup, lockout checks, password
// verification, token issuance and audit logging. All collaborators are
// injected once at process start.
type AuthService struct {
	users    repository.UserRepository
	hasher   *password.Hasher
	tokens   *token.Service
	registry *domain.PermissionRegistry
	lockout  *lockout.Policy
	audit    audit.Recorder
	clock    clockwork.Clock
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	hasher *password.Hasher,
	tokens *token.Service,
	registry *domain.PermissionRegistry,
	lockoutPolicy *lockout.Policy,
	auditRecorder audit.Recorder,
	clock clockwork.Clock,
	logger *slog.Logger,
) *AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		registry: registry,
		lockout:  lockoutPolicy,
		audit:    auditRecorder,
		clock:    clock,
		logger:   logger,
	}
}

// Login authenticates the credential pair and issues a bearer token.
//
// The failure message for unknown usernames and wrong passwords is identical
// so callers cannot enumerate accounts. Locked accounts fail before the
// password hash is consulted; the comparison's CPU cost would otherwise leak
// whether the password was correct.
func (s *AuthService) Login(ctx context.Context, username, plainPassword string, client ClientContext) (*LoginResult, error) {
	start := s.clock.Now()
	defer func() {
		loginDurationHist.Observe(s.clock.Since(start).Seconds())
	}()

	username = strings.TrimSpace(username)
	if username == "" || plainPassword == "" {
		s.recordFailure(ctx, username, audit.ReasonMissingCredentials, client)
		loginAttemptsCounter.WithLabelValues("missing_credentials").Inc()
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, username, audit.ReasonInvalidCredentials, client)
			loginAttemptsCounter.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "user lookup failed", "error", err, "username", username)
		loginAttemptsCounter.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.lockout.ClearExpiredLock(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear expired lock", "error", err, "user_id", user.ID)
	}
	if s.lockout.IsLocked(user) {
		s.recordFailure(ctx, username, audit.ReasonAccountLocked, client)
		loginAttemptsCounter.WithLabelValues("locked").Inc()
		return nil, domain.ErrAccountLocked
	}

	if !s.hasher.Verify(plainPassword, user.PasswordHash) {
		if err := s.lockout.OnFailure(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to record login failure", "error", err, "user_id", user.ID)
		}
		s.recordFailure(ctx, username, audit.ReasonInvalidCredentials, client)
		loginAttemptsCounter.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordFailure(ctx, username, audit.ReasonAccountDisabled, client)
		loginAttemptsCounter.WithLabelValues("disabled").Inc()
		return nil, domain.ErrAccountDisabled
	}

	if err := s.lockout.OnSuccess(ctx, user); err != nil {
		// The user authenticated; a failed bookkeeping write is logged but
		// does not block the login.
		s.logger.ErrorContext(ctx, "failed to record successful login", "error", err, "user_id", user.ID)
	}

	permissions := s.registry.PermissionsFor(user.Role)
	signed, err := s.tokens.Issue(user, permissions)
	if err != nil {
		s.logger.ErrorContext(ctx, "token issuance failed", "error", err, "user_id", user.ID)
		loginAttemptsCounter.WithLabelValues("error").Inc()
		return nil, err
	}

	s.record(ctx, audit.Entry{
		Action:          audit.ActionLoginSuccess,
		Username:        username,
		Role:            string(user.Role),
		PermissionCount: len(permissions),
		ClientIP:        client.IP,
		UserAgent:       client.UserAgent,
		OccurredAt:      s.clock.Now(),
	})
	loginAttemptsCounter.WithLabelValues("success").Inc()

	return &LoginResult{
		Token:     signed,
		User:      user.Summary(),
		ExpiresIn: s.tokens.TTL(),
	}, nil
}

// Refresh exchanges a valid-but-possibly-expired token for a fresh one.
// Signature, issuer and audience are still enforced, and the underlying
// account must still exist and be active. Permissions are re-resolved from
// the user's current role.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, client ClientContext) (*LoginResult, error) {
	claims, err := s.tokens.VerifyExpired(oldToken)
	if err != nil {
		tokenRefreshCounter.WithLabelValues("denied").Inc()
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "refresh for missing user", "user_id", claims.Subject)
			s.record(ctx, audit.Entry{
				Action:     audit.ActionRefreshDenied,
				Username:   claims.Username,
				ClientIP:   client.IP,
				UserAgent:  client.UserAgent,
				OccurredAt: s.clock.Now(),
			})
			tokenRefreshCounter.WithLabelValues("denied").Inc()
			return nil, domain.ErrTokenInvalid
		}
		tokenRefreshCounter.WithLabelValues("error").Inc()
		return nil, err
	}
	if !user.IsActive {
		s.logger.WarnContext(ctx, "refresh for inactive user", "user_id", user.ID)
		s.record(ctx, audit.Entry{
			Action:     audit.ActionRefreshDenied,
			Username:   user.Username,
			ClientIP:   client.IP,
			UserAgent:  client.UserAgent,
			OccurredAt: s.clock.Now(),
		})
		tokenRefreshCounter.WithLabelValues("denied").Inc()
		return nil, domain.ErrTokenInvalid
	}

	permissions := s.registry.PermissionsFor(user.Role)
	signed, err := s.tokens.Issue(user, permissions)
	if err != nil {
		tokenRefreshCounter.WithLabelValues("error").Inc()
		return nil, err
	}

	s.record(ctx, audit.Entry{
		Action:          audit.ActionTokenRefreshed,
		Username:        user.Username,
		Role:            string(user.Role),
		PermissionCount: len(permissions),
		ClientIP:        client.IP,
		UserAgent:       client.UserAgent,
		OccurredAt:      s.clock.Now(),
	})
	tokenRefreshCounter.WithLabelValues("success").Inc()

	return &LoginResult{
		Token:     signed,
		User:      user.Summary(),
		ExpiresIn: s.tokens.TTL(),
	}, nil
}

// CreateUser provisions a new account. Only callers holding manage:users
// reach this (enforced at the router); the password strength policy is
// enforced here through the hasher.
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return nil, domain.ErrMissingCredentials
	}
	if !s.registry.Knows(input.Role) {
		return nil, domain.ErrInvalidRole
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashed,
		Role:         input.Role,
		IsActive:     true,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user created", "user_id", created.ID, "username", created.Username, "role", created.Role)
	return created, nil
}

// GetUser looks an account up by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) recordFailure(ctx context.Context, username, reason string, client ClientContext) {
	s.record(ctx, audit.Entry{
		Action:     audit.ActionLoginFailed,
		Reason:     reason,
		Username:   username,
		ClientIP:   client.IP,
		UserAgent:  client.UserAgent,
		OccurredAt: s.clock.Now(),
	})
}

// record is best-effort: an unavailable audit sink is logged at Warn and the
// auth flow carries on.
func (s *AuthService) record(ctx context.Context, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "audit sink unavailable", "error", err, "action", entry.Action)
	}
}
