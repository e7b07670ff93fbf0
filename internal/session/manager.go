package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/apexfit/apexfit/internal/kv"
)

// Manager hands out one Store per user and drives the one-second tick of
// active sessions.
type Manager struct {
	documents kv.Store
	clock     func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	stores  map[string]*Store
	tickers map[string]context.CancelFunc

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewManager(documents kv.Store, clock func() time.Time, logger *slog.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		documents: documents,
		clock:     clock,
		logger:    logger,
		stores:    make(map[string]*Store),
		tickers:   make(map[string]context.CancelFunc),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Store returns the session store for a user, creating it on first use.
func (m *Manager) Store(userEmail string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.stores[userEmail]
	if !ok {
		store = NewStore(userEmail, m.documents, m.clock, m.logger)
		m.stores[userEmail] = store
	}
	return store
}

// EnsureTicking starts the per-user tick goroutine if it is not already
// running. The goroutine stops on its own once the session ends.
func (m *Manager) EnsureTicking(userEmail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickers[userEmail]; ok {
		return
	}
	store, ok := m.stores[userEmail]
	if !ok || !store.Active() {
		return
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	m.tickers[userEmail] = cancel
	m.wg.Add(1)
	go m.tick(ctx, userEmail, store)
}

func (m *Manager) tick(ctx context.Context, userEmail string, store *Store) {
	defer m.wg.Done()
	defer func() {
		m.mu.Lock()
		if cancel, ok := m.tickers[userEmail]; ok {
			cancel()
			delete(m.tickers, userEmail)
		}
		m.mu.Unlock()
	}()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !store.Active() {
				return
			}
			store.Tick(ctx)
		}
	}
}

// Shutdown stops all tick goroutines and waits for them to exit. Session
// snapshots stay persisted, so sessions resume after a restart.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}
