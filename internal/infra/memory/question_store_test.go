package memory

import (
	"context"
	"testing"
)

func TestQuestionStoreDeduplicatesByContent(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()

	questions := sampleQuestions()
	n, err := store.ImportQuestions(ctx, questions)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 imported, got %d (%v)", n, err)
	}

	// same content under a different id and option order is still a duplicate
	again := sampleQuestions()
	again[0].ID = ""
	again[0].IncorrectAnswers = []string{"22", "5", "3"}
	n, err = store.ImportQuestions(ctx, again)
	if err != nil || n != 0 {
		t.Fatalf("expected duplicates skipped, got %d (%v)", n, err)
	}

	catalog, _ := store.LoadCatalog(ctx)
	if len(catalog) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(catalog))
	}
}
