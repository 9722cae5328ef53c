package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// QuestionSource serves the catalog, usually through a TTL cache.
type QuestionSource interface {
	Catalog(ctx context.Context) ([]domain.Question, error)
	Question(ctx context.Context, id string) (domain.Question, error)
	Invalidate(ctx context.Context) error
}

// QuestionImporter persists validated question records, skipping content duplicates.
type QuestionImporter interface {
	ImportQuestions(ctx context.Context, questions []domain.Question) (imported int, err error)
}

// QuestionBank samples questions and shuffles their options with an injectable random source.
type QuestionBank struct {
	source   QuestionSource
	importer QuestionImporter

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewQuestionBank wires a bank. A nil rnd is replaced by a time-seeded source.
func NewQuestionBank(source QuestionSource, importer QuestionImporter, rnd *rand.Rand) *QuestionBank {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuestionBank{source: source, importer: importer, rnd: rnd}
}

// Sample returns n distinct questions chosen uniformly without replacement.
func (b *QuestionBank) Sample(ctx context.Context, n int) ([]domain.Question, error) {
	catalog, err := b.source.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 || len(catalog) < n {
		return nil, fmt.Errorf("%w: need %d, have %d", domain.ErrInsufficientInventory, n, len(catalog))
	}

	idx := make([]int, len(catalog))
	for i := range idx {
		idx[i] = i
	}
	b.mu.Lock()
	// partial Fisher-Yates: the first n slots end up a uniform sample
	for i := 0; i < n; i++ {
		j := i + b.rnd.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	b.mu.Unlock()

	out := make([]domain.Question, n)
	for i := 0; i < n; i++ {
		out[i] = catalog[idx[i]]
	}
	return out, nil
}

// ShuffledOptions merges the correct and incorrect answers in uniformly random order.
func (b *QuestionBank) ShuffledOptions(q domain.Question) []string {
	options := make([]string, 0, len(q.IncorrectAnswers)+1)
	options = append(options, q.IncorrectAnswers...)
	options = append(options, q.CorrectAnswer)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(options) - 1; i > 0; i-- {
		j := b.rnd.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
	return options
}

// View strips the correct answer and shuffles the options.
func (b *QuestionBank) View(q domain.Question) domain.QuestionView {
	return domain.QuestionView{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Type:       q.Type,
		Options:    b.ShuffledOptions(q),
	}
}

func (b *QuestionBank) Question(ctx context.Context, id string) (domain.Question, error) {
	return b.source.Question(ctx, id)
}

// BulkImport validates each record, hands the valid ones to the importer and drops the
// cached catalog so new questions become eligible for sampling.
func (b *QuestionBank) BulkImport(ctx context.Context, records []domain.Question) (domain.ImportReport, error) {
	report := domain.ImportReport{Received: len(records)}
	valid := make([]domain.Question, 0, len(records))
	for _, rec := range records {
		q, err := rec.Normalize()
		if err != nil {
			if errors.Is(err, domain.ErrInvalidQuestion) {
				report.Rejected++
				continue
			}
			return report, err
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return report, nil
	}

	imported, err := b.importer.ImportQuestions(ctx, valid)
	if err != nil {
		return report, err
	}
	report.Imported = imported
	report.Duplicates = len(valid) - imported

	if imported > 0 {
		if err := b.source.Invalidate(ctx); err != nil {
			return report, err
		}
	}
	return report, nil
}
