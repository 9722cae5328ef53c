package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

// QuestionStore reads and imports the question catalog.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) LoadCatalog(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, prompt, category, difficulty, type, correct_answer, incorrect_answers
		FROM questions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			difficulty string
			kind       string
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Category, &difficulty, &kind, &q.CorrectAnswer, &q.IncorrectAnswers); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Difficulty = domain.Difficulty(difficulty)
		q.Type = domain.QuestionType(kind)
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %s: %v", domain.ErrMalformedRecord, q.ID, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return questions, nil
}

// ImportQuestions inserts the batch in one transaction; rows whose content hash already
// exists are skipped and not counted.
func (s *QuestionStore) ImportQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("import questions: %w: %w", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, q := range questions {
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Queue(`
			INSERT INTO questions (id, content_hash, prompt, category, difficulty, type, correct_answer, incorrect_answers)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (content_hash) DO NOTHING`,
			id, q.ContentHash(), q.Prompt, q.Category, string(q.Difficulty), string(q.Type), q.CorrectAnswer, q.IncorrectAnswers)
	}

	results := tx.SendBatch(ctx, batch)
	imported := 0
	for range questions {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("insert question: %w", err)
		}
		imported += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("import questions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return imported, nil
}
