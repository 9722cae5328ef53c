package memory

import (
	"context"
	"fmt"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository. It keeps deep
// copies so callers never share mutable state with the store.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string]domain.Attempt)}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[attempt.ID]; ok {
		return fmt.Errorf("attempt %s already exists", attempt.ID)
	}
	s.attempts[attempt.ID] = attempt.Clone()
	return nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, id string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt.Clone(), nil
}

func (s *AttemptStore) UpdateAttempt(_ context.Context, next domain.Attempt, expectedRevision int64) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.attempts[next.ID]
	if !ok {
		return domain.ErrAttemptNotFound
	}
	if current.Revision != expectedRevision {
		return domain.ErrRevisionConflict
	}
	s.attempts[next.ID] = next.Clone()
	return nil
}

func (s *AttemptStore) TopCompleted(_ context.Context, limit int) ([]domain.Attempt, error) {
	if limit <= 0 {
		return []domain.Attempt{}, nil
	}
	s.mu.RLock()
	completed := make([]domain.Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		if a.Status == domain.StatusCompleted {
			completed = append(completed, a.Clone())
		}
	}
	s.mu.RUnlock()

	domain.SortLeaderboard(completed)
	if len(completed) > limit {
		completed = completed[:limit]
	}
	return completed, nil
}

func (s *AttemptStore) CompletedByUser(_ context.Context, userID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Attempt{}
	for _, a := range s.attempts {
		if a.UserID == userID && a.Status == domain.StatusCompleted {
			out = append(out, a.Clone())
		}
	}
	domain.SortHistory(out)
	return out, nil
}
