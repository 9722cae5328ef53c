package memory

import (
	"context"
	"errors"
	"testing"

	"trivia-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Bind(ctx, "u1", "a1"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := store.Bind(ctx, "u1", "a2"); !errors.Is(err, domain.ErrAlreadyActive) {
		t.Fatalf("expected already active, got %v", err)
	}
	if id, ok, _ := store.Lookup(ctx, "u1"); !ok || id != "a1" {
		t.Fatalf("expected binding to a1, got %q %v", id, ok)
	}

	if err := store.Touch(ctx, "u1", "a1"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := store.Touch(ctx, "u1", "a2"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected touch of another attempt to fail, got %v", err)
	}

	// releasing a different attempt must not drop the live binding
	_ = store.Release(ctx, "u1", "a2")
	if _, ok, _ := store.Lookup(ctx, "u1"); !ok {
		t.Fatalf("expected binding kept")
	}

	_ = store.Release(ctx, "u1", "a1")
	if _, ok, _ := store.Lookup(ctx, "u1"); ok {
		t.Fatalf("expected binding removed")
	}
}
