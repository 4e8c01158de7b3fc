// Package service creates identities in the bot's own database when no hosted auth provider is used.
package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"jobseeker-bot/internal/identity/domain"
	"jobseeker-bot/internal/identity/repository"
	"jobseeker-bot/internal/security"
)

// minPasswordLength mirrors the conversation's own check so direct callers get the same rule.
const minPasswordLength = 8

// LocalProvider implements the onboarding identity provider on top of a Repository.
type LocalProvider struct {
	repo   repository.Repository
	hasher *security.Hasher
	nowF   func() time.Time
}

// NewLocalProvider returns a provider that hashes passwords with hasher before storing them.
func NewLocalProvider(repo repository.Repository, hasher *security.Hasher) *LocalProvider {
	if hasher == nil {
		hasher = security.NewHasher(0)
	}
	return &LocalProvider{repo: repo, hasher: hasher, nowF: time.Now}
}

// CreateIdentity stores a new identity and returns its id. A taken email returns
// domain.ErrEmailAlreadyRegistered; anything else is a *domain.ProviderError.
func (p *LocalProvider) CreateIdentity(ctx context.Context, email, password string, preConfirmed bool) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", &domain.ProviderError{Message: "invalid email address", Err: err}
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", &domain.ProviderError{Message: "password is too short"}
	}

	existing, err := p.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", &domain.ProviderError{Message: "could not create account", Err: err}
	}
	if existing != nil {
		return "", domain.ErrEmailAlreadyRegistered
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return "", &domain.ProviderError{Message: "could not create account", Err: err}
	}
	id := &domain.Identity{
		ID:             uuid.New().String(),
		Email:          email,
		PasswordHash:   hash,
		EmailConfirmed: preConfirmed,
		CreatedAt:      p.nowF().UTC(),
	}
	if err := p.repo.Create(ctx, id); err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			return "", domain.ErrEmailAlreadyRegistered
		}
		return "", &domain.ProviderError{Message: "could not create account", Err: err}
	}
	return id.ID, nil
}
