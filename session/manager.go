// Package session keeps one store per signed-in session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/venue-booking/observability"
	"github.com/yeremiapane/venue-booking/store"
	"github.com/yeremiapane/venue-booking/utils"
	"golang.org/x/sync/errgroup"
)

// maxParallelInvalidations bounds concurrent reconciles after a change event.
const maxParallelInvalidations = 8

type entry struct {
	store *store.Store
	// zero means the session never expires on its own
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Manager creates a store on sign-in and discards it on sign-out or when the
// session's token expires.
type Manager struct {
	backend store.Backend
	metrics *observability.Metrics

	mu       sync.RWMutex
	sessions map[string]entry
}

func NewManager(backend store.Backend, metrics *observability.Metrics) *Manager {
	return &Manager{
		backend:  backend,
		metrics:  metrics,
		sessions: make(map[string]entry),
	}
}

// Start creates the store of a new session and loads today's floor plan. A
// failed initial load is logged; the store retries on its next reconcile.
// The session is dropped by Expire once expiresAt has passed.
func (m *Manager) Start(ctx context.Context, sessionID string, identity store.Identity, expiresAt time.Time) *store.Store {
	st := store.New(m.backend, store.WithIdentity(identity), store.WithMetrics(m.metrics))
	if err := st.Reconcile(ctx); err != nil {
		utils.ErrorLogger.WithError(err).WithField("session", sessionID).Warn("Initial floor plan load failed")
	}

	m.mu.Lock()
	if _, exists := m.sessions[sessionID]; !exists {
		m.metrics.SessionStarted()
	}
	m.sessions[sessionID] = entry{store: st, expiresAt: expiresAt}
	m.mu.Unlock()

	utils.InfoLogger.WithFields(map[string]interface{}{
		"session": sessionID,
		"user_id": identity.UserID,
		"mode":    identity.Mode(),
	}).Info("Session started")
	return st
}

func (m *Manager) Get(sessionID string) (*store.Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	return e.store, ok
}

// Resume returns the session's store, starting one when the process has none
// for a still valid token (e.g. after a restart).
func (m *Manager) Resume(ctx context.Context, sessionID string, identity store.Identity, expiresAt time.Time) *store.Store {
	if st, ok := m.Get(sessionID); ok {
		return st
	}
	return m.Start(ctx, sessionID, identity, expiresAt)
}

// End discards the session's store. It reports whether the session existed.
func (m *Manager) End(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return false
	}
	delete(m.sessions, sessionID)
	m.metrics.SessionEnded()
	return true
}

// Expire discards every session whose token expired at or before now and
// returns how many were dropped.
func (m *Manager) Expire(now time.Time) int {
	m.mu.Lock()
	dropped := 0
	for id, e := range m.sessions {
		if e.expired(now) {
			delete(m.sessions, id)
			m.metrics.SessionEnded()
			dropped++
		}
	}
	m.mu.Unlock()

	if dropped > 0 {
		utils.InfoLogger.WithField("sessions", dropped).Info("Expired sessions removed")
	}
	return dropped
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// InvalidateAll reconciles every live store's bookings after an external
// change and returns how many stores were refreshed successfully.
func (m *Manager) InvalidateAll(ctx context.Context) int {
	return m.each(ctx, (*store.Store).Invalidate)
}

// RefreshAll reloads tables and bookings of every live store after the table
// list changed outside them.
func (m *Manager) RefreshAll(ctx context.Context) int {
	return m.each(ctx, (*store.Store).Refresh)
}

func (m *Manager) each(ctx context.Context, fn func(*store.Store, context.Context) error) int {
	now := time.Now()
	m.mu.RLock()
	stores := make([]*store.Store, 0, len(m.sessions))
	for _, e := range m.sessions {
		if !e.expired(now) {
			stores = append(stores, e.store)
		}
	}
	m.mu.RUnlock()

	var (
		okMu sync.Mutex
		ok   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelInvalidations)
	for _, st := range stores {
		st := st
		g.Go(func() error {
			// errors are logged by the store; one failing session must not stop the rest
			if err := fn(st, gctx); err == nil {
				okMu.Lock()
				ok++
				okMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return ok
}
