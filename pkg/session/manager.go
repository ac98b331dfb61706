package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/veladahq/velada/internal/logging"
	"github.com/veladahq/velada/pkg/domain"
	"github.com/veladahq/velada/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager orchestrates draft access, ensuring safe concurrent operations on
// a single flow. It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.DraftStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active per-flow locks

	locker ports.DistributedLocker // Optional distributed locker
	logger *slog.Logger            // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session Manager with the given draft store.
func NewManager(store ports.DraftStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(flowID) after
// unlocking.
func (m *Manager) acquire(flowID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[flowID]
	if !exists {
		entry = &lockEntry{}
		m.locks[flowID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(flowID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[flowID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, flowID)
	}
}

// ReadDraft loads a draft under the flow lock. A missing or malformed draft
// degrades to an empty one; storage failures still surface.
func (m *Manager) ReadDraft(ctx context.Context, flowID, key string) (domain.SectionDraft, error) {
	var draft domain.SectionDraft
	err := m.WithLock(ctx, flowID, func(ctx context.Context) error {
		var err error
		draft, err = m.store.Load(ctx, flowID, key)
		if errors.Is(err, domain.ErrDraftNotFound) {
			draft = domain.SectionDraft{}
			return nil
		}
		return err
	})
	return draft, err
}

// WriteDraft persists a draft under the flow lock.
func (m *Manager) WriteDraft(ctx context.Context, flowID, key string, draft domain.SectionDraft) error {
	return m.WithLock(ctx, flowID, func(ctx context.Context) error {
		return m.store.Save(ctx, flowID, key, draft)
	})
}

// Clear removes the given keys under the flow lock.
func (m *Manager) Clear(ctx context.Context, flowID string, keys ...string) error {
	return m.WithLock(ctx, flowID, func(ctx context.Context) error {
		return m.store.Delete(ctx, flowID, keys...)
	})
}

// Store returns the underlying draft store.
func (m *Manager) Store() ports.DraftStore {
	return m.store
}

// WithLock executes a function while holding the lock for the flow.
func (m *Manager) WithLock(ctx context.Context, flowID string, fn func(context.Context) error) error {
	entry := m.acquire(flowID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(flowID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, flowID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"flow_id", flowID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
