package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
)

// QuestionStore is an in-memory catalog (useful for tests/demos). Imports upsert by
// content hash, so re-importing the same record is a no-op.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.Question
	hashes    map[string]struct{}
}

func NewQuestionStore(seed ...domain.Question) *QuestionStore {
	s := &QuestionStore{hashes: make(map[string]struct{})}
	_, _ = s.ImportQuestions(context.Background(), seed)
	return s
}

func (s *QuestionStore) LoadCatalog(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Question(nil), s.questions...), nil
}

func (s *QuestionStore) ImportQuestions(_ context.Context, questions []domain.Question) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	for _, q := range questions {
		hash := q.ContentHash()
		if _, dup := s.hashes[hash]; dup {
			continue
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.IncorrectAnswers = append([]string(nil), q.IncorrectAnswers...)
		s.hashes[hash] = struct{}{}
		s.questions = append(s.questions, q)
		imported++
	}
	return imported, nil
}
