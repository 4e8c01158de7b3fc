package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	identitydomain "jobseeker-bot/internal/identity/domain"
)

const codeEmailExists = "email_exists"

type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

type authUser struct {
	ID   string    `json:"id"`
	User *authUser `json:"user,omitempty"`
}

// CreateIdentity creates an Auth user through the admin API and returns its id.
// preConfirmed marks the email as confirmed so no confirmation mail is sent.
func (c *Client) CreateIdentity(ctx context.Context, email, password string, preConfirmed bool) (string, error) {
	raw, err := c.postJSON(ctx, "/auth/v1/admin/users", createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: preConfirmed,
	}, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if isDuplicateEmail(apiErr) {
				return "", identitydomain.ErrEmailAlreadyRegistered
			}
			return "", &identitydomain.ProviderError{Message: apiErr.Error(), Err: apiErr}
		}
		return "", &identitydomain.ProviderError{Message: "authentication service unavailable", Err: err}
	}

	var u authUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return "", &identitydomain.ProviderError{Message: "unexpected response from authentication service", Err: err}
	}
	if u.ID == "" && u.User != nil {
		u.ID = u.User.ID
	}
	if u.ID == "" {
		return "", &identitydomain.ProviderError{Message: "unexpected response from authentication service"}
	}
	return u.ID, nil
}

func isDuplicateEmail(e *APIError) bool {
	if e.Code == codeEmailExists {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "already registered") || strings.Contains(msg, "already been registered")
}
