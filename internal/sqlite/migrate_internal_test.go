package sqlite

import (
	"io"
	"log/slog"
	"testing"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close database: %v", closeErr)
		}
	})

	// Re-applying the schema must not fail or duplicate fixtures.
	if err = db.migrate(ctx, schemaDefinition); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, fixtures); err != nil {
		t.Fatalf("second fixtures: %v", err)
	}

	var version int
	if err = db.ReadWrite.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("user_version = %d, want %d", version, schemaVersion)
	}

	var exerciseCount int
	if err = db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM exercises").Scan(&exerciseCount); err != nil {
		t.Fatalf("count exercises: %v", err)
	}
	if exerciseCount == 0 {
		t.Error("expected seeded exercises")
	}
}
