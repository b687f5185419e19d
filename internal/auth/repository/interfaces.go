package repository

import (
	"context"
	"time"

	"github.com/rackatlas/inventory-api/internal/auth/domain"
)

// UserRepository is the persistence surface the auth core depends on. The
// concrete implementation lives in repository/postgres; tests substitute
// mocks. Lookups return domain.ErrUserNotFound when no row matches, and any
// other failure arrives wrapped as a domain.DatabaseError.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// IncrementLoginAttempts bumps the consecutive-failure counter with a
	// single atomic read-modify-write at the storage layer and returns the
	// new count. Concurrent failed attempts must never lose an update.
	IncrementLoginAttempts(ctx context.Context, id string) (int, error)

	// SetLock locks the account until the given time and clears the
	// failure counter, so an expired lock starts a fresh countdown.
	SetLock(ctx context.Context, id string, until time.Time) error

	// ResetLockout clears both the lock and the failure counter.
	ResetLockout(ctx context.Context, id string) error

	// RecordLogin marks a successful authentication: counter reset, lock
	// cleared, last login stamped.
	RecordLogin(ctx context.Context, id string, at time.Time) error
}
