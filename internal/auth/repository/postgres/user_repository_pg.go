package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rackatlas/inventory-api/internal/auth/domain"
	"github.com/rackatlas/inventory-api/internal/auth/repository"
)

const uniqueViolation = "23505"

type pgUserRepository struct {
	db *pgxpool.Pool
}

// NewPgUserRepository wires the user repository to the shared pgx pool.
func NewPgUserRepository(db *pgxpool.Pool) repository.UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, role, is_active,
       login_attempts, lock_until, last_login_at, created_at, updated_at`

func (r *pgUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.IsActive,
		&user.LoginAttempts, &user.LockUntil, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := r.scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, domain.NewDatabaseError("get user by username", err)
	}
	return user, nil
}

func (r *pgUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := r.scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, domain.NewDatabaseError("get user by id", err)
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	query := `
		INSERT INTO users (id, username, email, password_hash, role, is_active,
		                   login_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateUser
		}
		return nil, domain.NewDatabaseError("create user", err)
	}
	return user, nil
}

// IncrementLoginAttempts is a single UPDATE so racing failed attempts from
// the same account cannot lose a count and slip past the lockout threshold.
func (r *pgUserRepository) IncrementLoginAttempts(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE users
		SET login_attempts = login_attempts + 1, updated_at = $2
		WHERE id = $1
		RETURNING login_attempts
	`
	var attempts int
	if err := r.db.QueryRow(ctx, query, id, time.Now()).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, domain.NewDatabaseError("increment login attempts", err)
	}
	return attempts, nil
}

func (r *pgUserRepository) SetLock(ctx context.Context, id string, until time.Time) error {
	query := `
		UPDATE users
		SET lock_until = $2, login_attempts = 0, updated_at = $3
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, until, time.Now())
	if err != nil {
		return domain.NewDatabaseError("set lock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *pgUserRepository) ResetLockout(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET lock_until = NULL, login_attempts = 0, updated_at = $2
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return domain.NewDatabaseError("reset lockout", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *pgUserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE users
		SET last_login_at = $2, lock_until = NULL, login_attempts = 0, updated_at = $2
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return domain.NewDatabaseError("record login", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
