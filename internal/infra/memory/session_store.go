package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	bindings map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		bindings: make(map[string]string),
	}
}

func (s *SessionStore) Bind(_ context.Context, userID, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bindings[userID]; ok {
		return domain.ErrAlreadyActive
	}
	s.bindings[userID] = attemptID
	return nil
}

func (s *SessionStore) Lookup(_ context.Context, userID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attemptID, ok := s.bindings[userID]
	return attemptID, ok, nil
}

func (s *SessionStore) Release(_ context.Context, userID, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bindings[userID] == attemptID {
		delete(s.bindings, userID)
	}
	return nil
}

// Touch only checks the binding; in-memory bindings never expire.
func (s *SessionStore) Touch(_ context.Context, userID, attemptID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bindings[userID] != attemptID {
		return domain.ErrAttemptNotFound
	}
	return nil
}
