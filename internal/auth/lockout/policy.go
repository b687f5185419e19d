package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rackatlas/inventory-api/internal/auth/domain"
	"github.com/rackatlas/inventory-api/internal/auth/repository"
)

const (
	DefaultThreshold = 5
	DefaultDuration  = 2 * time.Hour
)

// Policy implements the per-account brute-force lockout state machine.
// Counting happens in the persistence layer through an atomic increment, so
// concurrent failures from the same account cannot bypass the threshold.
type Policy struct {
	repo      repository.UserRepository
	clock     clockwork.Clock
	threshold int
	duration  time.Duration
	logger    *slog.Logger
}

// NewPolicy builds the policy. Non-positive threshold/duration fall back to
// the defaults (5 attempts, 2 hours).
func NewPolicy(repo repository.UserRepository, clock clockwork.Clock, threshold int, duration time.Duration, logger *slog.Logger) *Policy {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Policy{repo: repo, clock: clock, threshold: threshold, duration: duration, logger: logger}
}

// IsLocked reports whether the account is currently locked. Attempts against
// a locked account must not reach the password check at all.
func (p *Policy) IsLocked(user *domain.User) bool {
	return user.LockUntil != nil && p.clock.Now().Before(*user.LockUntil)
}

// ClearExpiredLock resets the lockout state once lock_until has passed, so
// the next attempt counts against a fresh threshold. No-op while unlocked.
func (p *Policy) ClearExpiredLock(ctx context.Context, user *domain.User) error {
	if user.LockUntil == nil || p.IsLocked(user) {
		return nil
	}
	if err := p.repo.ResetLockout(ctx, user.ID); err != nil {
		return fmt.Errorf("clear expired lock: %w", err)
	}
	user.LockUntil = nil
	user.LoginAttempts = 0
	return nil
}

// OnFailure records a failed attempt. Reaching the threshold locks the
// account for the configured duration and clears the counter.
func (p *Policy) OnFailure(ctx context.Context, user *domain.User) error {
	attempts, err := p.repo.IncrementLoginAttempts(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("record failed attempt: %w", err)
	}
	user.LoginAttempts = attempts

	if attempts < p.threshold {
		return nil
	}

	until := p.clock.Now().Add(p.duration)
	if err := p.repo.SetLock(ctx, user.ID, until); err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	user.LockUntil = &until
	user.LoginAttempts = 0
	p.logger.WarnContext(ctx, "account locked after repeated failed logins",
		"user_id", user.ID, "attempts", attempts, "lock_until", until)
	return nil
}

// OnSuccess resets the failure counter and stamps the last login time.
func (p *Policy) OnSuccess(ctx context.Context, user *domain.User) error {
	now := p.clock.Now()
	if err := p.repo.RecordLogin(ctx, user.ID, now); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLogin = &now
	return nil
}
