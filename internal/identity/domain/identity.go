package domain

import (
	"errors"
	"time"
)

// ErrEmailAlreadyRegistered is returned by identity providers when the address already has an account.
var ErrEmailAlreadyRegistered = errors.New("email already registered")

// Identity is an account created for a job seeker at the confirm-password step.
type Identity struct {
	ID             string
	Email          string
	PasswordHash   string // empty for hosted providers
	EmailConfirmed bool
	CreatedAt      time.Time
}

// ProviderError is any identity provider failure other than a duplicate address.
// Message is safe to show to the user.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "identity provider error"
}

func (e *ProviderError) Unwrap() error { return e.Err }
