package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
)

// SessionStore is a Redis implementation of app.SessionRepository.
// Layout: SET trivia:session:{userID} {attemptID} NX EX ttl
//
// The TTL is an idle timeout: Touch renews it on every committed answer, so only an
// attempt left unanswered for a full TTL stops blocking its user.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Bind(ctx context.Context, userID, attemptID string) error {
	ok, err := s.client.SetNX(ctx, sessionKey(userID), attemptID, s.ttl).Result()
	if err != nil {
		return unavailable("bind session", err)
	}
	if !ok {
		return domain.ErrAlreadyActive
	}
	return nil
}

func (s *SessionStore) Lookup(ctx context.Context, userID string) (string, bool, error) {
	attemptID, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("lookup session", err)
	}
	return attemptID, true, nil
}

func (s *SessionStore) Release(ctx context.Context, userID, attemptID string) error {
	key := sessionKey(userID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if current != attemptID {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return unavailable("release session", err)
	}
	return nil
}

// Touch renews the TTL while the binding still points at attemptID.
func (s *SessionStore) Touch(ctx context.Context, userID, attemptID string) error {
	key := sessionKey(userID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrAttemptNotFound
		}
		if err != nil {
			return err
		}
		if current != attemptID {
			return domain.ErrAttemptNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Expire(ctx, key, s.ttl)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil, errors.Is(err, domain.ErrAttemptNotFound):
		return err
	case errors.Is(err, redis.TxFailedErr):
		// the binding changed underneath; whoever changed it owns the key now
		return nil
	default:
		return unavailable("touch session", err)
	}
}
