package engine

import "sync"

// SessionStore hands out per-session state, creating it on first access
type SessionStore interface {
	GetOrCreate(id string) *Session
	Get(id string) (*Session, bool)
	Len() int
}

// MemorySessions keeps sessions in process memory for the lifetime of
// the daemon.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemorySessions creates an empty session store
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id. Concurrent first access to the
// same id yields the same session.
func (m *MemorySessions) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = newSession()
		m.sessions[id] = s
	}
	return s
}

// Get returns the session for id without creating it
func (m *MemorySessions) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of known sessions
func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
