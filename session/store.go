package session

import (
	"context"
	"sync"
	"time"
)

// Store holds sessions by user id with get-or-create semantics.
type Store interface {
	Get(userID string) (*Session, bool)
	GetOrCreate(userID string) *Session
	// Reset replaces any existing session with a fresh one.
	Reset(userID string) *Session
	Clear(userID string)
	Len() int
}

// MemoryStore is a Store for single-process deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store whose janitor drops sessions idle longer
// than idleTTL. A zero idleTTL keeps sessions until cleared.
func NewMemoryStore(idleTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if ok {
		s.LastActive = m.now()
	}
	return s, ok
}

func (m *MemoryStore) GetOrCreate(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{UserID: userID}
		m.sessions[userID] = s
	}
	s.LastActive = m.now()
	return s
}

func (m *MemoryStore) Reset(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{UserID: userID, LastActive: m.now()}
	m.sessions[userID] = s
	return s
}

func (m *MemoryStore) Clear(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Sweep removes idle sessions and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTTL)
	n := 0
	for id, s := range m.sessions {
		if s.LastActive.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// RunJanitor sweeps every interval until ctx is done.
func (m *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
