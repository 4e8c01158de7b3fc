// Package supabase talks to the Supabase Auth admin, Storage and PostgREST HTTP APIs
// with a service_role key.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTimeout = 30 * time.Second
	roleServiceKey = "service_role"
	// secretKeyPrefix marks the opaque (non-JWT) secret keys newer projects issue.
	secretKeyPrefix = "sb_secret_"
	maxErrorBody    = 64 << 10
)

// ErrNotServiceKey is returned by NewClient for anon or user keys, which the admin APIs reject.
var ErrNotServiceKey = errors.New("supabase: key is not a service_role key")

// APIError is a non-2xx response from any Supabase API.
type APIError struct {
	Status  int
	Code    string // error_code (Auth), code (PostgREST) or error (Storage)
	Message string
}

// Error returns the server message, which is shown to users as-is.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("supabase: request failed with status %d", e.Status)
}

// Client is a Supabase project client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

// NewClient returns a client for the project at baseURL. A nil httpClient gets a 30s timeout.
func NewClient(baseURL, serviceKey string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase: URL is empty")
	}
	if err := checkServiceKey(serviceKey); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, serviceKey: serviceKey, http: httpClient}, nil
}

// checkServiceKey rejects JWT keys whose role claim is not service_role. The signature is not
// verified; the server does that. It only catches an anon key pasted into the wrong variable.
func checkServiceKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("supabase: service key is empty")
	}
	if strings.HasPrefix(key, secretKeyPrefix) {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return fmt.Errorf("supabase: parse service key: %w", err)
	}
	if role, _ := claims["role"].(string); role != roleServiceKey {
		return fmt.Errorf("%w (role %q)", ErrNotServiceKey, role)
	}
	return nil
}

// do sends one request with the service key and returns the response body for 2xx statuses.
func (c *Client) do(ctx context.Context, method, path string, body []byte, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseAPIError(resp.StatusCode, raw)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, header http.Header) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return c.do(ctx, http.MethodPost, path, raw, header)
}

// parseAPIError reads the error shapes of the three APIs:
// Auth {"code":422,"error_code":"...","msg":"..."}, PostgREST {"code":"23505","message":"..."},
// Storage {"statusCode":"409","error":"Duplicate","message":"..."}.
func parseAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}
	apiErr.Code = firstString(body, "error_code", "code", "error")
	apiErr.Message = firstString(body, "msg", "message", "error_description", "error")
	return apiErr
}

func firstString(body map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := body[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
