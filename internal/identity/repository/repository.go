package repository

import (
	"context"

	"jobseeker-bot/internal/identity/domain"
)

// Repository defines persistence for identities created by the local provider.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	// Create returns domain.ErrEmailAlreadyRegistered when the email is taken.
	Create(ctx context.Context, id *domain.Identity) error
}
