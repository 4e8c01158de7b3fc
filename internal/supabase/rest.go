package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	jobseekerdomain "jobseeker-bot/internal/jobseeker/domain"
)

const jobSeekersTable = "job_seekers"

// Insert adds the profile to the job_seekers table through PostgREST and returns the new row id.
func (c *Client) Insert(ctx context.Context, p jobseekerdomain.Profile) (string, error) {
	header := http.Header{}
	header.Set("Prefer", "return=representation")
	raw, err := c.postJSON(ctx, "/rest/v1/"+jobSeekersTable, p, header)
	if err != nil {
		return "", err
	}

	var rows []map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return "", fmt.Errorf("supabase: decode inserted row: %w", err)
	}
	if len(rows) == 0 {
		return "", errors.New("supabase: insert returned no rows")
	}
	switch id := rows[0]["id"].(type) {
	case json.Number:
		return id.String(), nil
	case string:
		return id, nil
	default:
		return "", fmt.Errorf("supabase: inserted row has no usable id (%T)", id)
	}
}
