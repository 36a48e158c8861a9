package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/presenter"
	"github.com/wricardo/foxandgeese/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// CollaboratorFactory builds the presenter collaborator for a new session
type CollaboratorFactory func(sessionID string) presenter.Collaborator

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger handed to every session's controller and presenter
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCollaborators sets the factory used to wire presenter notifications
func WithCollaborators(factory CollaboratorFactory) Option {
	return func(m *Manager) {
		m.collaborators = factory
	}
}

// WithMissionOptions passes options to every mission the manager builds
func WithMissionOptions(opts ...engine.MissionOption) Option {
	return func(m *Manager) {
		m.missionOpts = append(m.missionOpts, opts...)
	}
}

// Manager handles mission session lifecycle
type Manager struct {
	sessions      map[string]*service.Session
	collaborators CollaboratorFactory
	missionOpts   []engine.MissionOption
	logger        *zap.Logger
	mu            sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session for the given mission. An empty id gets a
// generated one.
func (m *Manager) Create(id string, def *engine.MissionDefinition) (*service.Session, error) {
	mission, err := engine.NewMissionFromDefinition(def, m.missionOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mission: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	logger := m.logger.With(zap.String("session_id", id))
	controller := engine.NewMissionController(mission, engine.WithLogger(logger))

	presenterOpts := []presenter.Option{presenter.WithLogger(logger)}
	if m.collaborators != nil {
		presenterOpts = append(presenterOpts, presenter.WithCollaborator(m.collaborators(id)))
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Definition:     def,
		Controller:     controller,
		Presenter:      presenter.New(controller, presenterOpts...),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[strings.ToLower(id)] = session

	logger.Debug("Session created", zap.String("mission_id", def.ID))
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.Info("Expired sessions removed", zap.Int("count", removed))
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns an unused 4-character hex id. Callers hold mu.
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	for {
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) {
			return id
		}
	}
}

func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
