package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"trivia-quiz-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)

	if err := store.Bind(ctx, "u1", "a1"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !mr.Exists("trivia:session:u1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("trivia:session:u1"); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %s", ttl)
	}
	if err := store.Bind(ctx, "u1", "a2"); !errors.Is(err, domain.ErrAlreadyActive) {
		t.Fatalf("expected already active, got %v", err)
	}

	if err := store.Release(ctx, "u1", "a2"); err != nil {
		t.Fatalf("release other: %v", err)
	}
	if id, ok, _ := store.Lookup(ctx, "u1"); !ok || id != "a1" {
		t.Fatalf("expected binding to a1 kept, got %q %v", id, ok)
	}

	if err := store.Release(ctx, "u1", "a1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists("trivia:session:u1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSessionStoreBindingExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)
	_ = store.Bind(ctx, "u1", "a1")

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Lookup(ctx, "u1"); ok {
		t.Fatalf("expected binding to expire")
	}
	if err := store.Bind(ctx, "u1", "a2"); err != nil {
		t.Fatalf("bind after expiry: %v", err)
	}
}

func TestSessionStoreTouchRenewsIdleExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)
	if err := store.Bind(ctx, "u1", "a1"); err != nil {
		t.Fatalf("bind: %v", err)
	}

	// answering every 40s keeps the binding past its original minute
	for i := 0; i < 3; i++ {
		mr.FastForward(40 * time.Second)
		if err := store.Touch(ctx, "u1", "a1"); err != nil {
			t.Fatalf("touch %d: %v", i, err)
		}
	}
	if id, ok, _ := store.Lookup(ctx, "u1"); !ok || id != "a1" {
		t.Fatalf("expected binding to a1 after 2m of activity, got %q %v", id, ok)
	}

	if err := store.Touch(ctx, "u1", "a2"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected touch of a foreign attempt to fail, got %v", err)
	}
	if ttl := mr.TTL("trivia:session:u1"); ttl != time.Minute {
		t.Fatalf("foreign touch changed ttl to %s", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if err := store.Touch(ctx, "u1", "a1"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected touch after idle expiry to fail, got %v", err)
	}
}
