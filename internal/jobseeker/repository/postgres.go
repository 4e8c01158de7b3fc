// Package repository writes finalized job seeker profiles to Postgres.
package repository

import (
	"context"
	"database/sql"
	"strconv"

	"jobseeker-bot/internal/jobseeker/domain"
)

const insertSQL = `INSERT INTO job_seekers (
    created_by, full_name, email, phone, job_title, region, location, city,
    bio, years_experience, instagram, facebook, telegram, profile_image
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a record store backed by the job_seekers table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores p and returns the generated row id as a decimal string.
func (r *PostgresRepository) Insert(ctx context.Context, p domain.Profile) (string, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, insertSQL,
		p.CreatedBy, p.FullName, p.Email, p.Phone, p.JobTitle, p.Region, p.Location, p.City,
		p.Bio, p.YearsExperience,
		nullable(p.Instagram), nullable(p.Facebook), nullable(p.Telegram), nullable(p.ProfileImage),
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func nullable(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
