package store

import (
	"context"
	"errors"
	"fmt"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgUserStore implements UserStore using PostgreSQL as the data store.
type PgUserStore struct {
	db *pgxpool.Pool
}

// NewPgUserStore creates a new UserStore backed by a PostgreSQL connection pool.
func NewPgUserStore(dbp *pgxpool.Pool) *PgUserStore {
	return &PgUserStore{db: dbp}
}

const userColumns = `id, email, name, password_hash, is_admin, created_at`

func (s *PgUserStore) Create(ctx context.Context, email, name, passwordHash string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3) RETURNING `+userColumns,
		email, name, passwordHash).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, sferrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func (s *PgUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sferrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &u, nil
}
