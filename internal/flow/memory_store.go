package flow

import (
	"context"
	"sync"
)

// MemoryStore is the default SessionStore: sessions live for the process
// lifetime and are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*Session)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	copied := *s
	copied.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		copied.Answers[k] = v
	}
	return &copied, nil
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	copied.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		copied.Answers[k] = v
	}
	m.sessions[s.ID] = &copied
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
