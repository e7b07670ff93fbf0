package kv_test

import (
	"testing"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/kv"
	"github.com/apexfit/apexfit/internal/sqlite"
	"github.com/apexfit/apexfit/internal/testhelpers"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	store := kv.NewSQLiteStore(db)

	if _, err := store.Get(ctx, "a@example.com", kv.KeyProfile); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, "a@example.com", kv.KeyProfile, []byte(`{"name":"Ada"}`)); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "a@example.com", kv.KeyProfile, []byte(`{"name":"Grace"}`)); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, "a@example.com", kv.KeyProfile)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"name":"Grace"}` {
		t.Fatalf("unexpected value %s", got)
	}

	// Documents are scoped per user.
	if _, err := store.Get(ctx, "b@example.com", kv.KeyProfile); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("want ErrNotFound for other user, got %v", err)
	}

	if err := store.Delete(ctx, "a@example.com", kv.KeyProfile); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "a@example.com", kv.KeyProfile); err != nil {
		t.Fatalf("deleting missing document: %v", err)
	}
	if _, err := store.Get(ctx, "a@example.com", kv.KeyProfile); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}
