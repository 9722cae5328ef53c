package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sort"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func newBank(t *testing.T, n int, seed int64) (*QuestionBank, *memory.QuestionStore) {
	t.Helper()
	store := memory.NewQuestionStore(catalog(n)...)
	return NewQuestionBank(memory.NewCatalogCache(store, time.Minute), store, rand.New(rand.NewSource(seed))), store
}

func catalog(n int) []domain.Question {
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = domain.Question{
			ID:               fmt.Sprintf("q%02d", i),
			Prompt:           fmt.Sprintf("Question %d?", i),
			Category:         "General",
			Difficulty:       domain.DifficultyEasy,
			Type:             domain.QuestionMultiple,
			CorrectAnswer:    fmt.Sprintf("right-%d", i),
			IncorrectAnswers: []string{fmt.Sprintf("wrong-a-%d", i), fmt.Sprintf("wrong-b-%d", i), fmt.Sprintf("wrong-c-%d", i)},
		}
	}
	return out
}

func TestSampleIsDistinctAndDeterministic(t *testing.T) {
	ctx := context.Background()
	b1, _ := newBank(t, 30, 7)
	b2, _ := newBank(t, 30, 7)

	s1, err := b1.Sample(ctx, 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	s2, _ := b2.Sample(ctx, 10)
	if !reflect.DeepEqual(s1, s2) {
		t.Fatalf("same seed produced different samples")
	}

	seen := map[string]bool{}
	for _, q := range s1 {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in sample", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSampleWholeCatalog(t *testing.T) {
	bank, _ := newBank(t, 10, 1)
	got, err := bank.Sample(context.Background(), 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	ids := make([]string, len(got))
	for i, q := range got {
		ids[i] = q.ID
	}
	sort.Strings(ids)
	for i, id := range ids {
		if id != fmt.Sprintf("q%02d", i) {
			t.Fatalf("expected every question exactly once, got %v", ids)
		}
	}
}

func TestSampleInsufficientInventory(t *testing.T) {
	bank, _ := newBank(t, 9, 1)
	if _, err := bank.Sample(context.Background(), 10); !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Fatalf("expected insufficient inventory, got %v", err)
	}
}

func TestShuffledOptionsUnbiased(t *testing.T) {
	bank, _ := newBank(t, 1, 42)
	q := catalog(1)[0]

	const rounds = 40000
	counts := make([]int, 4)
	for i := 0; i < rounds; i++ {
		opts := bank.ShuffledOptions(q)
		if len(opts) != 4 {
			t.Fatalf("expected 4 options, got %v", opts)
		}
		for pos, o := range opts {
			if o == q.CorrectAnswer {
				counts[pos]++
			}
		}
	}
	for pos, c := range counts {
		// expected 10000 per slot; 5 sigma is roughly +-430
		if c < 9500 || c > 10500 {
			t.Fatalf("correct answer at position %d %d times out of %d: %v", pos, c, rounds, counts)
		}
	}

	if q.IncorrectAnswers[0] != "wrong-a-0" {
		t.Fatalf("shuffle mutated the question")
	}
}

func TestBulkImportReportsDuplicatesAndRejects(t *testing.T) {
	ctx := context.Background()
	bank, _ := newBank(t, 10, 1)

	if _, err := bank.Sample(ctx, 11); !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Fatalf("expected insufficient inventory before import, got %v", err)
	}

	fresh := domain.Question{Prompt: "Is Go garbage collected?", CorrectAnswer: "True", IncorrectAnswers: []string{"False"}, Type: domain.QuestionBoolean}
	duplicate := catalog(1)[0]
	duplicate.ID = ""
	invalid := domain.Question{Prompt: "No wrong answers", CorrectAnswer: "x"}

	report, err := bank.BulkImport(ctx, []domain.Question{fresh, duplicate, invalid})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	want := domain.ImportReport{Received: 3, Imported: 1, Duplicates: 1, Rejected: 1}
	if report != want {
		t.Fatalf("expected %+v, got %+v", want, report)
	}

	// the cache was invalidated, so the new question is sampleable
	if _, err := bank.Sample(ctx, 11); err != nil {
		t.Fatalf("expected 11 questions after import: %v", err)
	}
}
