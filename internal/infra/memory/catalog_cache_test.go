package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestCatalogCacheCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewQuestionStore(sampleQuestions()...)}
	cache := NewCatalogCache(loader, time.Minute)

	if _, err := cache.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.Question(context.Background(), "q2"); err != nil {
		t.Fatalf("question: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogCacheSortsAndInvalidates(t *testing.T) {
	store := NewQuestionStore(sampleQuestions()...)
	loader := &countingLoader{CatalogLoader: store}
	cache := NewCatalogCache(loader, time.Minute)
	ctx := context.Background()

	catalog, err := cache.Catalog(ctx)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if catalog[0].ID != "q1" || catalog[1].ID != "q2" {
		t.Fatalf("expected catalog ordered by id, got %s,%s", catalog[0].ID, catalog[1].ID)
	}

	extra := domain.Question{ID: "q0", Prompt: "Is water wet?", Type: domain.QuestionBoolean,
		Difficulty: domain.DifficultyEasy, CorrectAnswer: "True", IncorrectAnswers: []string{"False"}}
	if _, err := store.ImportQuestions(ctx, []domain.Question{extra}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := cache.Question(ctx, "q0"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected stale cache to miss q0, got %v", err)
	}

	_ = cache.Invalidate(ctx)
	if _, err := cache.Question(ctx, "q0"); err != nil {
		t.Fatalf("expected q0 after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:               "q2",
			Prompt:           "What is 2 + 2?",
			Category:         "Math",
			Difficulty:       domain.DifficultyEasy,
			Type:             domain.QuestionMultiple,
			CorrectAnswer:    "4",
			IncorrectAnswers: []string{"3", "5", "22"},
		},
		{
			ID:               "q1",
			Prompt:           "The capital of France?",
			Category:         "Geography",
			Difficulty:       domain.DifficultyMedium,
			Type:             domain.QuestionMultiple,
			CorrectAnswer:    "Paris",
			IncorrectAnswers: []string{"Lyon", "Nice", "Lille"},
		},
	}
}
