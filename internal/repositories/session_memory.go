package repositories

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/adaptiq/assessment-engine/internal/models"
)

// MemorySessionStore is a process-local SessionStore for tests and single
// instance deployments. Sessions are stored as JSON so the round-trip matches
// the Redis-backed store.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string][]byte),
	}
}

func (s *MemorySessionStore) Save(ctx context.Context, session *models.QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = data
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	s.mu.RLock()
	data, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var session models.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
