package migrate

import (
	"os"
	"testing"
)

func TestRun_EmptyDSN(t *testing.T) {
	if err := Run("", Up, 0); err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	for _, d := range []Direction{"", "sideways", "UP", "Down"} {
		t.Run(string(d), func(t *testing.T) {
			if err := Run("postgres://localhost/test", d, 0); err == nil {
				t.Errorf("Run with direction %q should return error", d)
			}
		})
	}
}

func TestRun_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	if err := Run(dsn, Up, 0); err != nil {
		t.Fatalf("up: %v", err)
	}
	// Second run is a no-op.
	if err := Run(dsn, Up, 0); err != nil {
		t.Fatalf("repeat up: %v", err)
	}
}
