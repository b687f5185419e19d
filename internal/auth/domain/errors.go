package domain

import (
	"errors"
	"fmt"
)

// Auth error taxonomy. The HTTP boundary maps these to statuses; internal
// detail never leaks past the generic messages below.
var (
	// 400
	ErrMissingCredentials = errors.New("username and password are required")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")

	// 401. ErrInvalidCredentials deliberately covers both unknown username
	// and wrong password so usernames cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// 403
	ErrAccountLocked    = errors.New("account locked")
	ErrAccountDisabled  = errors.New("account deactivated")
	ErrPermissionDenied = errors.New("insufficient permissions")

	// repository sentinels
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already exists")

	// bad input to user provisioning
	ErrInvalidRole = errors.New("unknown role")
)

// DatabaseError wraps persistence failures (unavailable, timeout). It is
// non-operational: surfaced as a bare 500 and logged with full detail
// server-side only.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// NewDatabaseError tags err with the logical operation that failed.
func NewDatabaseError(op string, err error) error {
	return &DatabaseError{Op: op, Err: err}
}

// IsDatabaseError reports whether any error in the chain is a DatabaseError.
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}
