package app

import (
	"context"
	"errors"

	"trivia-quiz-service/internal/domain"
)

// SessionRepository stores the userID -> attemptID binding and nothing else; progress
// always lives on the attempt itself.
type SessionRepository interface {
	// Bind fails with domain.ErrAlreadyActive if the user is bound to any attempt.
	Bind(ctx context.Context, userID, attemptID string) error
	Lookup(ctx context.Context, userID string) (attemptID string, ok bool, err error)
	// Release removes the binding only if it still points at attemptID.
	Release(ctx context.Context, userID, attemptID string) error
	// Touch extends the binding's idle expiry if it still points at attemptID.
	Touch(ctx context.Context, userID, attemptID string) error
}

// SessionBinder enforces a single in-progress attempt per user.
type SessionBinder struct {
	sessions SessionRepository
	attempts AttemptRepository
}

func NewSessionBinder(sessions SessionRepository, attempts AttemptRepository) *SessionBinder {
	return &SessionBinder{sessions: sessions, attempts: attempts}
}

// ensureFree clears a binding whose attempt is gone or terminal and rejects a live one.
// Attempts are persisted before they are bound, so a missing attempt means a stale binding.
func (b *SessionBinder) ensureFree(ctx context.Context, userID string) error {
	attemptID, ok, err := b.sessions.Lookup(ctx, userID)
	if err != nil || !ok {
		return err
	}
	attempt, err := b.attempts.GetAttempt(ctx, attemptID)
	switch {
	case errors.Is(err, domain.ErrAttemptNotFound):
	case err != nil:
		return err
	case attempt.Status == domain.StatusInProgress:
		return domain.ErrAlreadyActive
	}
	return b.sessions.Release(ctx, userID, attemptID)
}

func (b *SessionBinder) bind(ctx context.Context, userID, attemptID string) error {
	return b.sessions.Bind(ctx, userID, attemptID)
}

func (b *SessionBinder) release(ctx context.Context, userID, attemptID string) error {
	return b.sessions.Release(ctx, userID, attemptID)
}

func (b *SessionBinder) touch(ctx context.Context, userID, attemptID string) error {
	return b.sessions.Touch(ctx, userID, attemptID)
}

// resolve returns the attempt id the request refers to: the explicit one, or the bound one.
func (b *SessionBinder) resolve(ctx context.Context, userID, attemptID string) (string, error) {
	if attemptID != "" {
		return attemptID, nil
	}
	bound, ok, err := b.sessions.Lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrAttemptNotFound
	}
	return bound, nil
}
