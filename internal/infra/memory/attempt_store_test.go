package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestAttemptStoreConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	attempt := domain.NewAttempt("a1", domain.Player{UserID: "u1", DisplayName: "Alice"}, []string{"q1", "q2"}, now)
	if err := store.CreateAttempt(ctx, attempt); err != nil {
		t.Fatalf("create: %v", err)
	}

	next := attempt.Clone()
	next.Answers = append(next.Answers, domain.AnswerRecord{QuestionID: "q1", Answer: "x", ShownAt: now, AnsweredAt: now})
	next.Position = 1
	next.Revision = 2
	if err := store.UpdateAttempt(ctx, next, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.UpdateAttempt(ctx, next, 1); !errors.Is(err, domain.ErrRevisionConflict) {
		t.Fatalf("expected conflict on stale revision, got %v", err)
	}

	got, err := store.GetAttempt(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Position != 1 || got.Revision != 2 {
		t.Fatalf("unexpected stored attempt %+v", got)
	}

	// mutating the returned copy must not leak into the store
	got.Answers[0].Answer = "changed"
	again, _ := store.GetAttempt(ctx, "a1")
	if again.Answers[0].Answer != "x" {
		t.Fatalf("store shares state with callers")
	}

	if _, err := store.GetAttempt(ctx, "missing"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAttemptStoreRejectsInvalidAttempt(t *testing.T) {
	store := NewAttemptStore()
	bad := domain.NewAttempt("a1", domain.Player{UserID: "u1"}, []string{"q1"}, time.Now())
	bad.Position = 1
	if err := store.CreateAttempt(context.Background(), bad); !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected malformed record, got %v", err)
	}
}

func TestAttemptStoreAggregates(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mustCreate(t, store, completedAttempt("a1", "u1", 950, base.Add(time.Minute)))
	mustCreate(t, store, completedAttempt("a2", "u2", 700, base.Add(2*time.Minute)))
	mustCreate(t, store, completedAttempt("a3", "u1", 950, base.Add(3*time.Minute)))
	abandoned := domain.NewAttempt("a4", domain.Player{UserID: "u1"}, []string{"q1"}, base)
	abandoned.Status = domain.StatusAbandoned
	mustCreate(t, store, abandoned)

	top, err := store.TopCompleted(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 3 || top[0].ID != "a1" || top[1].ID != "a3" || top[2].ID != "a2" {
		t.Fatalf("unexpected leaderboard order %v", ids(top))
	}

	history, err := store.CompletedByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].ID != "a3" || history[1].ID != "a1" {
		t.Fatalf("unexpected history %v", ids(history))
	}
}

func mustCreate(t *testing.T, store *AttemptStore, a domain.Attempt) {
	t.Helper()
	if err := store.CreateAttempt(context.Background(), a); err != nil {
		t.Fatalf("create %s: %v", a.ID, err)
	}
}

func completedAttempt(id, userID string, score float64, completedAt time.Time) domain.Attempt {
	a := domain.NewAttempt(id, domain.Player{UserID: userID, DisplayName: userID}, []string{"q1"}, completedAt.Add(-time.Minute))
	a.Answers = []domain.AnswerRecord{{QuestionID: "q1", Answer: "x", Grade: 1, Score: score}}
	a.Position = 1
	a.TotalScore = score
	a.Status = domain.StatusCompleted
	a.CompletedAt = &completedAt
	return a
}

func ids(attempts []domain.Attempt) []string {
	out := make([]string, len(attempts))
	for i, a := range attempts {
		out[i] = a.ID
	}
	return out
}
