package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"trivia-quiz-service/internal/domain"
)

func TestAttemptStoreRoundTripAndConflict(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewAttemptStore(newClient(mr))
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	attempt := domain.NewAttempt("a1", domain.Player{UserID: "u1", DisplayName: "Alice"}, []string{"q1", "q2"}, now)
	if err := store.CreateAttempt(ctx, attempt); err != nil {
		t.Fatalf("create: %v", err)
	}

	next := attempt.Clone()
	next.Answers = append(next.Answers, domain.AnswerRecord{
		QuestionID: "q1", Answer: "4", ShownAt: now, AnsweredAt: now.Add(time.Second),
		ElapsedSeconds: 1, Grade: 1, Score: 81.87307530779819,
	})
	next.TotalScore = 81.87307530779819
	next.Position = 1
	next.ShownAt = now.Add(time.Second)
	next.Revision = 2

	if err := store.UpdateAttempt(ctx, next, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.UpdateAttempt(ctx, next, 1); !errors.Is(err, domain.ErrRevisionConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, err := store.GetAttempt(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Position != 1 || got.Revision != 2 || len(got.Answers) != 1 || !got.ShownAt.Equal(next.ShownAt) {
		t.Fatalf("unexpected attempt %+v", got)
	}

	if _, err := store.GetAttempt(ctx, "missing"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAttemptStoreRejectsMalformedDocument(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set(attemptKey("a1"), `{"id":"a1","userId":"u1","questionIds":["q1"],"position":1,"status":"in-progress"}`)
	store := NewAttemptStore(newClient(mr))
	if _, err := store.GetAttempt(context.Background(), "a1"); !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected malformed record, got %v", err)
	}
}

func TestAttemptStoreLeaderboardAndHistory(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewAttemptStore(newClient(mr))
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	complete(t, store, "a1", "u1", 950, base.Add(time.Minute))
	complete(t, store, "a2", "u2", 700, base.Add(2*time.Minute))
	complete(t, store, "a3", "u1", 950, base.Add(3*time.Minute))

	abandoned := domain.NewAttempt("a4", domain.Player{UserID: "u1"}, []string{"q1"}, base)
	if err := store.CreateAttempt(ctx, abandoned); err != nil {
		t.Fatalf("create: %v", err)
	}
	gone := abandoned.Clone()
	gone.Status = domain.StatusAbandoned
	gone.Revision = 2
	if err := store.UpdateAttempt(ctx, gone, 1); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	top, err := store.TopCompleted(ctx, 1)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	// both attempts tied at the cut are returned, earliest completion first
	if len(top) != 2 || top[0].ID != "a1" || top[1].ID != "a3" {
		t.Fatalf("unexpected top order %v", attemptIDs(top))
	}

	all, err := store.TopCompleted(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(all) != 3 || all[2].ID != "a2" {
		t.Fatalf("unexpected leaderboard %v", attemptIDs(all))
	}

	history, err := store.CompletedByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].ID != "a3" || history[1].ID != "a1" {
		t.Fatalf("unexpected history %v", attemptIDs(history))
	}
}

func complete(t *testing.T, store *AttemptStore, id, userID string, score float64, completedAt time.Time) {
	t.Helper()
	ctx := context.Background()
	a := domain.NewAttempt(id, domain.Player{UserID: userID, DisplayName: userID}, []string{"q1"}, completedAt.Add(-time.Minute))
	if err := store.CreateAttempt(ctx, a); err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
	done := a.Clone()
	done.Answers = []domain.AnswerRecord{{QuestionID: "q1", Answer: "x", Grade: 1, Score: score}}
	done.Position = 1
	done.TotalScore = score
	done.Status = domain.StatusCompleted
	done.CompletedAt = &completedAt
	done.Revision = 2
	if err := store.UpdateAttempt(ctx, done, 1); err != nil {
		t.Fatalf("complete %s: %v", id, err)
	}
}

func attemptIDs(attempts []domain.Attempt) []string {
	out := make([]string, len(attempts))
	for i, a := range attempts {
		out[i] = a.ID
	}
	return out
}
