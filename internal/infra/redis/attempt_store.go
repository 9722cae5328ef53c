package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
)

// AttemptStore keeps each attempt as a JSON document and maintains two sorted-set
// indexes for completed attempts:
//
//	SET  trivia:attempt:{id}               {attempt JSON}
//	ZADD trivia:leaderboard                {totalScore} {id}
//	ZADD trivia:user:{userID}:completed    {completedAt ms} {id}
//
// Updates are optimistic: WATCH the document, compare revisions, MULTI/EXEC.
type AttemptStore struct {
	client *redis.Client
}

func NewAttemptStore(client *redis.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	created, err := s.client.SetNX(ctx, attemptKey(attempt.ID), data, 0).Result()
	if err != nil {
		return unavailable("create attempt", err)
	}
	if !created {
		return fmt.Errorf("attempt %s already exists", attempt.ID)
	}
	return nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, id string) (domain.Attempt, error) {
	raw, err := s.client.Get(ctx, attemptKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, unavailable("get attempt", err)
	}
	return domain.DecodeAttempt(raw)
}

func (s *AttemptStore) UpdateAttempt(ctx context.Context, next domain.Attempt, expectedRevision int64) error {
	if err := next.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	key := attemptKey(next.ID)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrAttemptNotFound
		}
		if err != nil {
			return err
		}
		current, err := domain.DecodeAttempt(raw)
		if err != nil {
			return err
		}
		if current.Revision != expectedRevision {
			return domain.ErrRevisionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if next.Status == domain.StatusCompleted && next.CompletedAt != nil {
				pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: next.TotalScore, Member: next.ID})
				pipe.ZAdd(ctx, userCompletedKey(next.UserID), redis.Z{
					Score:  float64(next.CompletedAt.UnixMilli()),
					Member: next.ID,
				})
			}
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return domain.ErrRevisionConflict
	case errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrRevisionConflict),
		errors.Is(err, domain.ErrMalformedRecord):
		return err
	default:
		return unavailable("update attempt", err)
	}
}

// TopCompleted reads the best limit ids plus any ids tied with the last one, so the
// caller can apply the completion-time tie-break deterministically.
func (s *AttemptStore) TopCompleted(ctx context.Context, limit int) ([]domain.Attempt, error) {
	if limit <= 0 {
		return []domain.Attempt{}, nil
	}
	top, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, unavailable("read leaderboard", err)
	}
	if len(top) == 0 {
		return []domain.Attempt{}, nil
	}

	cutoff := top[len(top)-1].Score
	ids, err := s.client.ZRevRangeByScore(ctx, leaderboardKey, &redis.ZRangeBy{
		Min: strconv.FormatFloat(cutoff, 'g', -1, 64),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, unavailable("read leaderboard", err)
	}

	attempts, err := s.loadMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	domain.SortLeaderboard(attempts)
	return attempts, nil
}

func (s *AttemptStore) CompletedByUser(ctx context.Context, userID string) ([]domain.Attempt, error) {
	ids, err := s.client.ZRevRange(ctx, userCompletedKey(userID), 0, -1).Result()
	if err != nil {
		return nil, unavailable("read history", err)
	}
	attempts, err := s.loadMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	domain.SortHistory(attempts)
	return attempts, nil
}

func (s *AttemptStore) loadMany(ctx context.Context, ids []string) ([]domain.Attempt, error) {
	if len(ids) == 0 {
		return []domain.Attempt{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = attemptKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable("load attempts", err)
	}

	attempts := make([]domain.Attempt, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a document; skip it
			continue
		}
		attempt, err := domain.DecodeAttempt([]byte(raw))
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
