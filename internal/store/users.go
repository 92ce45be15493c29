package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/models"
)

// UserStore persists users in Postgres. Email uniqueness is enforced by the
// users_email_key index, not by a read-before-write.
type UserStore struct {
	db      DBTX
	timeout time.Duration
}

// NewUserStore creates a UserStore; timeout bounds each query (0 disables).
func NewUserStore(db DBTX, timeout time.Duration) *UserStore {
	return &UserStore{db: db, timeout: timeout}
}

// Create inserts u. A duplicate email returns apperr.ErrEmailTaken and
// leaves the table untouched.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	const q = `
INSERT INTO users (id, name, email, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5)`

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.Exec(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrEmailTaken()
		}
		return mapError("insert user", err)
	}
	return nil
}

// GetByEmail looks up a user by exact email
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	const q = `
SELECT id, name, email, password_hash, created_at
FROM users
WHERE email = $1`

	return s.scanOne(s.db.QueryRow(ctx, q, email), "get user by email")
}

// GetByID looks up a user by id
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	const q = `
SELECT id, name, email, password_hash, created_at
FROM users
WHERE id = $1`

	return s.scanOne(s.db.QueryRow(ctx, q, id), "get user by id")
}

func (s *UserStore) scanOne(row pgx.Row, op string) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound()
		}
		return nil, mapError(op, err)
	}
	return &u, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
