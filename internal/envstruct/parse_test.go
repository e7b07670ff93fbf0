package envstruct_test

import (
	"errors"
	"testing"
	"time"

	"github.com/apexfit/apexfit/internal/envstruct"
)

func lookupFromMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestPopulate(t *testing.T) {
	type config struct {
		Addr        string        `env:"TEST_ADDR" envDefault:"localhost:8080"`
		SqliteURL   string        `env:"TEST_SQLITE_URL"`
		MaxAttempts int           `env:"TEST_MAX_ATTEMPTS" envDefault:"3"`
		Debug       bool          `env:"TEST_DEBUG" envDefault:"false"`
		SnapshotTTL time.Duration `env:"TEST_SNAPSHOT_TTL" envDefault:"24h"`
	}

	env := map[string]string{
		"TEST_SQLITE_URL":   ":memory:",
		"TEST_MAX_ATTEMPTS": "5",
		"TEST_DEBUG":        "true",
	}

	var cfg config
	if err := envstruct.Populate(&cfg, lookupFromMap(env)); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	if cfg.Addr != "localhost:8080" {
		t.Errorf("Addr = %q, want default localhost:8080", cfg.Addr)
	}
	if cfg.SqliteURL != ":memory:" {
		t.Errorf("SqliteURL = %q, want :memory:", cfg.SqliteURL)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.SnapshotTTL != 24*time.Hour {
		t.Errorf("SnapshotTTL = %v, want 24h", cfg.SnapshotTTL)
	}
}

func TestPopulateMissingRequired(t *testing.T) {
	type config struct {
		Required string `env:"TEST_REQUIRED"`
	}

	var cfg config
	err := envstruct.Populate(&cfg, lookupFromMap(nil))
	if err == nil {
		t.Fatal("expected error for missing required variable")
	}
	if !errors.Is(err, envstruct.ErrEnvNotSet) {
		t.Errorf("expected ErrEnvNotSet, got %v", err)
	}
}

func TestPopulateRejectsNonStruct(t *testing.T) {
	var s string
	if err := envstruct.Populate(&s, lookupFromMap(nil)); err == nil {
		t.Fatal("expected error for non-struct")
	}
	if err := envstruct.Populate(struct{}{}, lookupFromMap(nil)); err == nil {
		t.Fatal("expected error for non-pointer")
	}
}

func TestPopulateInvalidValues(t *testing.T) {
	type config struct {
		Count int `env:"TEST_COUNT"`
	}

	var cfg config
	env := map[string]string{"TEST_COUNT": "not-a-number"}
	if err := envstruct.Populate(&cfg, lookupFromMap(env)); err == nil {
		t.Fatal("expected error for invalid int")
	}
}
