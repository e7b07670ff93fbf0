package session

import (
	"testing"
	"time"

	"github.com/apexfit/apexfit/internal/kv"
	"github.com/apexfit/apexfit/internal/testhelpers"
)

func TestManagerStorePerUser(t *testing.T) {
	t.Parallel()
	manager := NewManager(kv.NewMemoryStore(), time.Now,
		testhelpers.NewLogger(testhelpers.NewWriter(t)))
	defer manager.Shutdown()

	a := manager.Store("a@example.com")
	if manager.Store("a@example.com") != a {
		t.Error("store not reused for the same user")
	}
	if manager.Store("b@example.com") == a {
		t.Error("store shared across users")
	}

	// Without an active session no ticker starts.
	manager.EnsureTicking("a@example.com")
	manager.mu.Lock()
	tickers := len(manager.tickers)
	manager.mu.Unlock()
	if tickers != 0 {
		t.Errorf("ticker started for idle session")
	}
}

func TestManagerShutdownStopsTickers(t *testing.T) {
	t.Parallel()
	manager := NewManager(kv.NewMemoryStore(), time.Now,
		testhelpers.NewLogger(testhelpers.NewWriter(t)))

	store := manager.Store("a@example.com")
	if _, err := store.Start(t.Context(), "Push Day", "", []ExerciseSession{benchExercise()}); err != nil {
		t.Fatal(err)
	}
	manager.EnsureTicking("a@example.com")
	manager.EnsureTicking("a@example.com")
	manager.mu.Lock()
	tickers := len(manager.tickers)
	manager.mu.Unlock()
	if tickers != 1 {
		t.Fatalf("want exactly one ticker, got %d", tickers)
	}

	// Shutdown must return promptly with a ticker still running.
	manager.Shutdown()
}
