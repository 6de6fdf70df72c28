package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mathrand "math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/puzzle"
	"github.com/wricardo/mcp-training/wordsearch/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Option configures a Manager.
type Option func(*Manager)

// WithRoundObserver attaches the observer built by fn to every new round.
func WithRoundObserver(fn func(sessionID string) engine.Observer) Option {
	return func(m *Manager) { m.observer = fn }
}

// WithSeed makes board generation reproducible: the n-th session created
// uses seed+n.
func WithSeed(seed int64) Option {
	return func(m *Manager) {
		m.seed = seed
		m.seeded = true
	}
}

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	observer func(sessionID string) engine.Observer
	seed     int64
	seeded   bool
	created  int64
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session with the given ID and puzzle. An empty ID is
// replaced by a random 4-character one.
func (m *Manager) Create(id, configID string, config *engine.PuzzleConfig) (*service.Session, error) {
	if config == nil {
		return nil, fmt.Errorf("failed to create round: %w", ErrInvalidSessionID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}
	if strings.TrimSpace(id) != id || strings.ContainsAny(id, "/?#") {
		return nil, ErrInvalidSessionID
	}

	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	var observers []engine.Observer
	if m.observer != nil {
		observers = append(observers, m.observer(id))
	}
	round, err := engine.NewRound(config.RoundConfig(), m.nextRand(), observers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Round:          round,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[strings.ToLower(id)] = session
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, exists := m.sessions[strings.ToLower(id)]; exists {
		return session, nil
	}
	return nil, ErrSessionNotFound
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
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

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// nextRand returns the random source for the next round, or nil for the
// engine's time-seeded default. Caller holds m.mu.
func (m *Manager) nextRand() puzzle.Rand {
	if !m.seeded {
		return nil
	}
	r := mathrand.New(mathrand.NewSource(m.seed + m.created))
	m.created++
	return r
}

// generateSessionID generates a random 4-character session ID that is not
// in use. Caller holds m.mu.
func (m *Manager) generateSessionID() string {
	for {
		// 2 random bytes = 4 hex characters
		bytes := make([]byte, 2)
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
