package session

import (
	"sort"
	"sync"
)

// Manager maps dialog instance ids to their sessions. Sessions of different
// dialogs are independent.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Open creates and registers a session with a fresh id.
func (m *Manager) Open() *Session {
	s := New()
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns the session registered under id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrOpen returns the session for a host-assigned id, registering it on
// first use.
func (m *Manager) GetOrOpen(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := WithID(id)
	m.sessions[id] = s
	return s
}

// Close cancels the session's outstanding task and forgets it. It reports
// whether the id was registered.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Cancel()
	}
	return ok
}

// IDs returns the registered session ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
