package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"jobseeker-bot/internal/identity/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const (
	getByEmailSQL = `SELECT id, email, password_hash, email_confirmed, created_at
FROM identities WHERE email = $1`
	createSQL = `INSERT INTO identities (id, email, password_hash, email_confirmed, created_at)
VALUES ($1, $2, $3, $4, $5)`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an identity repository backed by the identities table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByEmail returns the identity with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	var id domain.Identity
	err := r.db.QueryRowContext(ctx, getByEmailSQL, email).
		Scan(&id.ID, &id.Email, &id.PasswordHash, &id.EmailConfirmed, &id.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

// Create inserts the identity. ID must be set by the caller.
func (r *PostgresRepository) Create(ctx context.Context, id *domain.Identity) error {
	_, err := r.db.ExecContext(ctx, createSQL, id.ID, id.Email, id.PasswordHash, id.EmailConfirmed, id.CreatedAt)
	return mapInsertError(err)
}

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrEmailAlreadyRegistered
	}
	return err
}
