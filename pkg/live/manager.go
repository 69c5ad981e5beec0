package live

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vireo-ui/vireo/pkg/protocol"
)

// Manager owns the session table: creation against the configured
// limit, lookup for resume, and eviction of sessions idle past their
// timeout.
type Manager struct {
	cfg    *Config
	root   RootFunc
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewManager starts a manager with its cleanup sweep running.
func NewManager(root RootFunc, cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()
	m := &Manager{
		cfg:      cfg,
		root:     root,
		logger:   cfg.Logger,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	m.wg.Add(1)
	go m.cleanupLoop()
	return m
}

// Create mounts a new session and registers it. The returned session
// has its body rendered and is ready to serve a page.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrServerClosed
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}
	id := generateSessionID()
	s := newSession(id, m.cfg)
	s.onClose = func(sess *Session) { m.remove(sess.ID) }
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	if err := s.start(m.root); err != nil {
		s.Close(protocol.CloseError, "mount failed")
		return nil, err
	}

	m.logger.Info("session created", "session_id", id, "sessions", count)
	return s, nil
}

// Get returns a live session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || s.State() == StateClosed {
		return nil, false
	}
	return s, true
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Each calls fn for every registered session. Servers broadcast by
// combining Each with Session.Update.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.RLock()
	snapshot := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		snapshot = append(snapshot, s)
	}
	m.mu.RUnlock()

	for _, s := range snapshot {
		fn(s)
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Close shuts every session down and stops the cleanup sweep.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	snapshot := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		snapshot = append(snapshot, s)
	}
	m.mu.Unlock()

	close(m.done)
	for _, s := range snapshot {
		s.Close(protocol.CloseServerShutdown, "server shutting down")
	}
	m.wg.Wait()
}

// cleanupLoop periodically evicts sessions idle past their timeout.
func (m *Manager) cleanupLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.expireIdle()
		case <-m.done:
			return
		}
	}
}

func (m *Manager) expireIdle() {
	cutoff := time.Now().Add(-m.cfg.Session.IdleTimeout)

	var expired []*Session
	m.mu.RLock()
	for _, s := range m.sessions {
		st := s.State()
		if (st == StateNew || st == StateDetached) && s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
		}
	}
	remaining := len(m.sessions) - len(expired)
	m.mu.RUnlock()

	for _, s := range expired {
		s.Close(protocol.CloseSessionExpired, "session expired")
	}
	if len(expired) > 0 {
		m.logger.Info("cleaned up expired sessions",
			"count", len(expired),
			"remaining", remaining)
	}
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Weak session IDs are worse than no server.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}
