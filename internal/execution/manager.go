package execution

import (
	"context"
	"errors"
	"sync"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("execution session not found")

// Manager is the in-memory registry of active execution sessions, keyed
// by a generated session id. One workout is exclusively owned by at most
// one engine instance for the session's duration.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Engine

	gateway FeedbackGateway
	store   CompletionStore
	metrics *metrics.Manager // may be nil in tests
}

// NewManager creates a session manager.
func NewManager(gateway FeedbackGateway, store CompletionStore, m *metrics.Manager) *Manager {
	return &Manager{
		sessions: make(map[string]*Engine),
		gateway:  gateway,
		store:    store,
		metrics:  m,
	}
}

// Start builds an engine for the workout and registers it under a fresh
// session id.
func (m *Manager) Start(workout *domain.Workout, user User) (string, *Engine, error) {
	engine, err := NewEngine(workout, user, m.gateway, m.store)
	if err != nil {
		return "", nil, err
	}

	sessionID := uuid.NewString()
	m.mu.Lock()
	m.sessions[sessionID] = engine
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionsStarted.Inc()
		m.metrics.ActiveSessions.Inc()
	}
	log.WithFields(log.Fields{
		"sessionId": sessionID,
		"workoutId": workout.ID.Hex(),
	}).Info("execution session started")
	return sessionID, engine, nil
}

// Get returns the engine for a session id.
func (m *Manager) Get(sessionID string) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	engine, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return engine, nil
}

// Finalize runs the engine's finalize and, on success, retires the
// session from the registry.
func (m *Manager) Finalize(ctx context.Context, sessionID, notes string) (*domain.WorkoutFeedback, error) {
	engine, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	fb, err := engine.Finalize(ctx, notes)
	if err != nil {
		if m.metrics != nil {
			m.metrics.FinalizeFailures.Inc()
		}
		return nil, err
	}

	m.remove(sessionID)
	if m.metrics != nil {
		m.metrics.SessionsCompleted.Inc()
		m.metrics.ActiveSessions.Dec()
	}
	log.WithField("sessionId", sessionID).Info("execution session completed")
	return fb, nil
}

// Close discards a session: timers stop, nothing is persisted. Closing an
// unknown session is not an error; the client may retry a close after a
// network hiccup.
func (m *Manager) Close(sessionID string) {
	engine, err := m.Get(sessionID)
	if err != nil {
		return
	}
	completed := engine.Completed()
	engine.Close()
	m.remove(sessionID)

	if m.metrics != nil {
		m.metrics.ActiveSessions.Dec()
		if !completed {
			m.metrics.SessionsDiscarded.Inc()
		}
	}
	log.WithField("sessionId", sessionID).Info("execution session closed")
}

// Shutdown closes every remaining session, for server teardown.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.Close(id)
	}
}

func (m *Manager) remove(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
