package supabase

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	jobseekerdomain "jobseeker-bot/internal/jobseeker/domain"
)

func TestInsert(t *testing.T) {
	tg := "@jane"
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/job_seekers" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Prefer") != "return=representation" || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("headers = %v", r.Header)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["created_by"] != "jane@example.com" || body["telegram"] != "@jane" || body["instagram"] != nil {
			t.Errorf("body = %v", body)
		}
		if _, ok := body["profile_image"]; !ok {
			t.Error("null columns should still be sent")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":9007199254740993,"full_name":"Jane Doe"}]`))
	})
	id, err := c.Insert(t.Context(), jobseekerdomain.Profile{CreatedBy: "jane@example.com", Email: "jane@example.com", Telegram: &tg})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != "9007199254740993" {
		t.Errorf("id = %q, want the exact integer", id)
	}
}

func TestInsert_UUIDID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1f0e1c8a-0000-4000-8000-000000000000"}]`))
	})
	id, err := c.Insert(t.Context(), jobseekerdomain.Profile{})
	if err != nil || id != "1f0e1c8a-0000-4000-8000-000000000000" {
		t.Errorf("Insert = %q, %v", id, err)
	}
}

func TestInsert_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusConflict, `{"code":"23505","message":"duplicate key value violates unique constraint"}`},
		{"empty result", http.StatusCreated, `[]`},
		{"no id", http.StatusCreated, `[{"full_name":"x"}]`},
		{"not json", http.StatusCreated, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			if _, err := c.Insert(t.Context(), jobseekerdomain.Profile{}); err == nil {
				t.Error("Insert should fail")
			}
		})
	}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key"}`))
	})
	_, err := c.Insert(t.Context(), jobseekerdomain.Profile{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "23505" || err.Error() != "duplicate key" {
		t.Errorf("err = %v", err)
	}
}
