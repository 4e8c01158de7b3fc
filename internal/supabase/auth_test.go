package supabase

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	identitydomain "jobseeker-bot/internal/identity/domain"
)

func TestCreateIdentity_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/v1/admin/users" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Email != "user@example.com" || body.Password != "password1" || !body.EmailConfirm {
			t.Errorf("body = %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"5b1c0d1e-0000-4000-8000-000000000001","email":"user@example.com"}`))
	})
	id, err := c.CreateIdentity(t.Context(), "user@example.com", "password1", true)
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	if id != "5b1c0d1e-0000-4000-8000-000000000001" {
		t.Errorf("id = %q", id)
	}
}

func TestCreateIdentity_NestedUser(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"nested-id"}}`))
	})
	id, err := c.CreateIdentity(t.Context(), "a@b.co", "password1", true)
	if err != nil || id != "nested-id" {
		t.Errorf("CreateIdentity = %q, %v", id, err)
	}
}

func TestCreateIdentity_Duplicate(t *testing.T) {
	for name, body := range map[string]string{
		"error code":   `{"code":422,"error_code":"email_exists","msg":"exists"}`,
		"old message":  `{"code":422,"msg":"User already registered"}`,
		"been message": `{"code":422,"msg":"A user with this email address has already been registered"}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(body))
			})
			_, err := c.CreateIdentity(t.Context(), "a@b.co", "password1", true)
			if !errors.Is(err, identitydomain.ErrEmailAlreadyRegistered) {
				t.Errorf("err = %v, want ErrEmailAlreadyRegistered", err)
			}
		})
	}
}

func TestCreateIdentity_ProviderError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":422,"error_code":"weak_password","msg":"Password should be at least 6 characters."}`))
	})
	_, err := c.CreateIdentity(t.Context(), "a@b.co", "password1", true)
	var pe *identitydomain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if pe.Message != "Password should be at least 6 characters." {
		t.Errorf("message = %q", pe.Message)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "weak_password" {
		t.Errorf("should wrap the APIError, got %v", err)
	}
}

func TestCreateIdentity_MissingID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := c.CreateIdentity(t.Context(), "a@b.co", "password1", true)
	var pe *identitydomain.ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want *ProviderError", err)
	}
}

func TestCreateIdentity_Unreachable(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()
	_, err := c.CreateIdentity(t.Context(), "a@b.co", "password1", true)
	var pe *identitydomain.ProviderError
	if !errors.As(err, &pe) || pe.Message != "authentication service unavailable" {
		t.Errorf("err = %v", err)
	}
}
