package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/domain"
)

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts,alias:a"`

	ID          string                `bun:"id,pk"`
	UserID      string                `bun:"user_id,notnull"`
	DisplayName string                `bun:"display_name,notnull"`
	QuestionIDs []string              `bun:"question_ids,type:jsonb,notnull"`
	Answers     []domain.AnswerRecord `bun:"answers,type:jsonb,notnull"`
	Position    int                   `bun:"position,notnull"`
	TotalScore  float64               `bun:"total_score,notnull"`
	Status      string                `bun:"status,notnull"`
	StartedAt   time.Time             `bun:"started_at,notnull"`
	ShownAt     time.Time             `bun:"shown_at,notnull"`
	CompletedAt *time.Time            `bun:"completed_at"`
	AbandonedAt *time.Time            `bun:"abandoned_at"`
	Revision    int64                 `bun:"revision,notnull"`
}

func toRow(a domain.Attempt) *attemptRow {
	answers := a.Answers
	if answers == nil {
		answers = []domain.AnswerRecord{}
	}
	return &attemptRow{
		ID:          a.ID,
		UserID:      a.UserID,
		DisplayName: a.DisplayName,
		QuestionIDs: a.QuestionIDs,
		Answers:     answers,
		Position:    a.Position,
		TotalScore:  a.TotalScore,
		Status:      string(a.Status),
		StartedAt:   a.StartedAt,
		ShownAt:     a.ShownAt,
		CompletedAt: a.CompletedAt,
		AbandonedAt: a.AbandonedAt,
		Revision:    a.Revision,
	}
}

func (r *attemptRow) toDomain() (domain.Attempt, error) {
	a := domain.Attempt{
		ID:          r.ID,
		UserID:      r.UserID,
		DisplayName: r.DisplayName,
		QuestionIDs: r.QuestionIDs,
		Answers:     r.Answers,
		Position:    r.Position,
		TotalScore:  r.TotalScore,
		Status:      domain.AttemptStatus(r.Status),
		StartedAt:   r.StartedAt,
		ShownAt:     r.ShownAt,
		CompletedAt: r.CompletedAt,
		AbandonedAt: r.AbandonedAt,
		Revision:    r.Revision,
	}
	if a.Answers == nil {
		a.Answers = []domain.AnswerRecord{}
	}
	if err := a.Validate(); err != nil {
		return domain.Attempt{}, err
	}
	return a, nil
}

// AttemptStore persists attempts with bun; updates are guarded by the revision column.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(toRow(attempt)).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, id string) (domain.Attempt, error) {
	row := new(attemptRow)
	err := s.db.NewSelect().Model(row).Where("a.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("select attempt: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return row.toDomain()
}

func (s *AttemptStore) UpdateAttempt(ctx context.Context, next domain.Attempt, expectedRevision int64) error {
	if err := next.Validate(); err != nil {
		return err
	}
	res, err := s.db.NewUpdate().
		Model(toRow(next)).
		ExcludeColumn("id", "user_id", "started_at").
		WherePK().
		Where("revision = ?", expectedRevision).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update attempt: %w: %w", domain.ErrStoreUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	if affected == 1 {
		return nil
	}

	exists, err := s.db.NewSelect().Model((*attemptRow)(nil)).Where("a.id = ?", next.ID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check attempt: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if !exists {
		return domain.ErrAttemptNotFound
	}
	return domain.ErrRevisionConflict
}

func (s *AttemptStore) TopCompleted(ctx context.Context, limit int) ([]domain.Attempt, error) {
	if limit <= 0 {
		return []domain.Attempt{}, nil
	}
	var rows []attemptRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("a.status = ?", string(domain.StatusCompleted)).
		OrderExpr("a.total_score DESC, a.completed_at ASC, a.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return toDomainList(rows)
}

func (s *AttemptStore) CompletedByUser(ctx context.Context, userID string) ([]domain.Attempt, error) {
	var rows []attemptRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("a.user_id = ?", userID).
		Where("a.status = ?", string(domain.StatusCompleted)).
		OrderExpr("a.completed_at DESC, a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select history: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return toDomainList(rows)
}

func toDomainList(rows []attemptRow) ([]domain.Attempt, error) {
	out := make([]domain.Attempt, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
