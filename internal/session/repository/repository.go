package repository

import (
	"context"
	"errors"

	"jobseeker-bot/internal/session/domain"
)

// ErrNotFound is returned by Update when the user has no session.
var ErrNotFound = errors.New("session not found")

// Repository stores one onboarding session per user.
type Repository interface {
	// Get returns the session for userID. found is false when the user never ran /start
	// (or the session expired).
	Get(ctx context.Context, userID int64) (s domain.Session, found bool, err error)
	// Init replaces any session for userID with a fresh one at the first step.
	Init(ctx context.Context, userID int64) (domain.Session, error)
	// Save replaces the stored session with s.
	Save(ctx context.Context, s domain.Session) error
	// Update applies fn to the stored session and saves the result. Returns ErrNotFound if absent.
	Update(ctx context.Context, userID int64, fn func(*domain.Session)) (domain.Session, error)
}
