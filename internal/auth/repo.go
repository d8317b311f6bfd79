package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no admin matches the lookup.
var ErrNotFound = errors.New("admin not found")

// ErrUsernameTaken indicates the username is already registered.
var ErrUsernameTaken = errors.New("username already taken")

// Admin is a back-office account row.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	Superadmin   bool
	CreatedAt    time.Time
}

// Repo provides Postgres access to admin accounts.
type Repo struct {
	Pool *pgxpool.Pool
}

// ByUsername loads an admin by username.
func (r *Repo) ByUsername(ctx context.Context, username string) (Admin, error) {
	var a Admin
	err := r.Pool.QueryRow(ctx, `
		SELECT id, username, password_hash, superadmin, created_at
		FROM admins WHERE username = $1`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Superadmin, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, ErrNotFound
		}
		return Admin{}, fmt.Errorf("get admin: %w", err)
	}
	return a, nil
}

// Create inserts an admin account.
func (r *Repo) Create(ctx context.Context, username, passwordHash string, superadmin bool) (Admin, error) {
	var a Admin
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO admins (username, password_hash, superadmin)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, superadmin, created_at`,
		username, passwordHash, superadmin,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Superadmin, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Admin{}, ErrUsernameTaken
		}
		return Admin{}, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}
