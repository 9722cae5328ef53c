package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/logger"
)

const maxLeaderboardLimit = 100

var tracer = otel.Tracer("trivia-quiz-service/internal/app")

// AttemptRepository abstracts durable attempt storage (in-memory, Redis, Postgres).
// The store is the single writer of attempt state.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) error
	// GetAttempt returns domain.ErrAttemptNotFound for unknown ids.
	GetAttempt(ctx context.Context, id string) (domain.Attempt, error)
	// UpdateAttempt replaces the attempt only if the stored revision equals expectedRevision,
	// otherwise it returns domain.ErrRevisionConflict and leaves the record untouched.
	UpdateAttempt(ctx context.Context, next domain.Attempt, expectedRevision int64) error
	// TopCompleted returns at least the best limit completed attempts (ties at the cut may add more).
	TopCompleted(ctx context.Context, limit int) ([]domain.Attempt, error)
	CompletedByUser(ctx context.Context, userID string) ([]domain.Attempt, error)
}

// QuizService contains the quiz attempt use cases.
type QuizService struct {
	attempts AttemptRepository
	binder   *SessionBinder
	bank     *QuestionBank
	log      *logger.Logger

	now              func() time.Time
	newID            func() string
	questionCount    int
	leaderboardLimit int
}

type Option func(*QuizService)

// WithClock is mostly for tests that need deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

func WithQuestionCount(n int) Option {
	return func(s *QuizService) {
		if n > 0 {
			s.questionCount = n
		}
	}
}

func WithLeaderboardLimit(n int) Option {
	return func(s *QuizService) {
		if n > 0 {
			s.leaderboardLimit = n
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *QuizService) {
		if log != nil {
			s.log = log
		}
	}
}

func NewQuizService(attempts AttemptRepository, sessions SessionRepository, bank *QuestionBank, opts ...Option) *QuizService {
	s := &QuizService{
		attempts:         attempts,
		binder:           NewSessionBinder(sessions, attempts),
		bank:             bank,
		log:              logger.NewNop(),
		now:              time.Now,
		newID:            uuid.NewString,
		questionCount:    domain.DefaultQuestionCount,
		leaderboardLimit: 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start samples a fresh question sequence, binds it to the player and serves question one.
func (s *QuizService) Start(ctx context.Context, player domain.Player) (prompt domain.QuestionPrompt, err error) {
	ctx, span := tracer.Start(ctx, "QuizService.Start")
	defer func() { endSpan(span, err) }()

	if player.UserID == "" {
		return prompt, domain.ErrUnauthenticated
	}
	if err = s.binder.ensureFree(ctx, player.UserID); err != nil {
		return prompt, err
	}

	questions, err := s.bank.Sample(ctx, s.questionCount)
	if err != nil {
		return prompt, err
	}
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	// persisted before bound: a bound attempt id always resolves
	attempt := domain.NewAttempt(s.newID(), player, ids, s.now())
	if err = s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return prompt, err
	}
	if err = s.binder.bind(ctx, player.UserID, attempt.ID); err != nil {
		s.discard(ctx, attempt)
		return prompt, err
	}

	span.SetAttributes(attribute.String("attempt.id", attempt.ID))
	s.log.Info("attempt started", "attemptId", attempt.ID, "userId", player.UserID, "questions", len(ids))
	return s.prompt(attempt, questions[0]), nil
}

// SubmitAnswer grades the answer to the current question and advances the attempt in a
// single conditional write. Duplicate or racing submissions for the same position fail
// with domain.ErrAttemptNotActive.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID string, sub domain.AnswerSubmission) (result domain.SubmitResult, err error) {
	ctx, span := tracer.Start(ctx, "QuizService.SubmitAnswer")
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return result, domain.ErrUnauthenticated
	}
	attemptID, err := s.binder.resolve(ctx, userID, sub.AttemptID)
	if err != nil {
		return result, err
	}
	span.SetAttributes(attribute.String("attempt.id", attemptID))

	attempt, err := s.loadOwned(ctx, userID, attemptID)
	if err != nil {
		return result, err
	}
	if !attempt.Active() {
		return result, domain.ErrAttemptNotActive
	}
	current := attempt.CurrentQuestionID()
	if sub.QuestionID != "" && sub.QuestionID != current {
		return result, fmt.Errorf("%w: question %s is no longer current", domain.ErrAttemptNotActive, sub.QuestionID)
	}

	question, err := s.bank.Question(ctx, current)
	if err != nil {
		return result, err
	}
	next, record, err := recordAnswer(attempt, question, sub.Answer, s.now())
	if err != nil {
		return result, err
	}

	// Read the following question before committing so a lookup failure leaves
	// the stored attempt untouched.
	var following domain.Question
	if next.Active() {
		if following, err = s.bank.Question(ctx, next.CurrentQuestionID()); err != nil {
			return result, err
		}
	}

	if err = s.attempts.UpdateAttempt(ctx, next, attempt.Revision); err != nil {
		if errors.Is(err, domain.ErrRevisionConflict) {
			return result, fmt.Errorf("%w: position %d was already answered", domain.ErrAttemptNotActive, attempt.Position+1)
		}
		return result, err
	}

	result = domain.SubmitResult{Correct: record.Grade == 1, QuestionScore: record.Score}
	if next.Status == domain.StatusCompleted {
		summary := next.Summary()
		result.Summary = &summary
		if relErr := s.binder.release(ctx, userID, next.ID); relErr != nil {
			s.log.Warn("release binding after completion", "attemptId", next.ID, "error", relErr)
		}
		s.log.Info("attempt completed", "attemptId", next.ID, "userId", userID,
			"score", summary.TotalScore, "correct", summary.CorrectAnswers)
		return result, nil
	}

	if touchErr := s.binder.touch(ctx, userID, next.ID); touchErr != nil {
		s.log.Warn("refresh binding after answer", "attemptId", next.ID, "error", touchErr)
	}
	prompt := s.prompt(next, following)
	result.Next = &prompt
	return result, nil
}

// Current re-serves the pending question of the user's bound attempt. The shown
// timestamp is left as is, so reconnecting does not restart the clock.
func (s *QuizService) Current(ctx context.Context, userID string) (prompt domain.QuestionPrompt, err error) {
	ctx, span := tracer.Start(ctx, "QuizService.Current")
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return prompt, domain.ErrUnauthenticated
	}
	attemptID, err := s.binder.resolve(ctx, userID, "")
	if err != nil {
		return prompt, err
	}
	attempt, err := s.loadOwned(ctx, userID, attemptID)
	if err != nil {
		return prompt, err
	}
	if !attempt.Active() {
		return prompt, domain.ErrAttemptNotActive
	}
	question, err := s.bank.Question(ctx, attempt.CurrentQuestionID())
	if err != nil {
		return prompt, err
	}
	return s.prompt(attempt, question), nil
}

// Abandon ends an in-progress attempt without a result.
func (s *QuizService) Abandon(ctx context.Context, userID, attemptID string) (err error) {
	ctx, span := tracer.Start(ctx, "QuizService.Abandon")
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if attemptID, err = s.binder.resolve(ctx, userID, attemptID); err != nil {
		return err
	}
	attempt, err := s.loadOwned(ctx, userID, attemptID)
	if err != nil {
		return err
	}
	next, err := abandonAttempt(attempt, s.now())
	if err != nil {
		return err
	}
	if err = s.attempts.UpdateAttempt(ctx, next, attempt.Revision); err != nil {
		if errors.Is(err, domain.ErrRevisionConflict) {
			return fmt.Errorf("%w: attempt changed concurrently", domain.ErrAttemptNotActive)
		}
		return err
	}
	if relErr := s.binder.release(ctx, userID, attemptID); relErr != nil {
		s.log.Warn("release binding after abandon", "attemptId", attemptID, "error", relErr)
	}
	s.log.Info("attempt abandoned", "attemptId", attemptID, "userId", userID, "position", attempt.Position)
	return nil
}

// Leaderboard returns the best completed attempts. limit <= 0 selects the configured default.
func (s *QuizService) Leaderboard(ctx context.Context, limit int) (entries []domain.LeaderboardEntry, err error) {
	ctx, span := tracer.Start(ctx, "QuizService.Leaderboard")
	defer func() { endSpan(span, err) }()

	if limit <= 0 {
		limit = s.leaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	attempts, err := s.attempts.TopCompleted(ctx, limit)
	if err != nil {
		return nil, err
	}
	attempts = domain.CompletedOnly(attempts)
	domain.SortLeaderboard(attempts)
	if len(attempts) > limit {
		attempts = attempts[:limit]
	}

	entries = make([]domain.LeaderboardEntry, 0, len(attempts))
	for _, a := range attempts {
		entries = append(entries, a.LeaderboardEntry())
	}
	return entries, nil
}

// History lists the user's completed attempts, most recent first.
func (s *QuizService) History(ctx context.Context, userID string) (entries []domain.HistoryEntry, err error) {
	ctx, span := tracer.Start(ctx, "QuizService.History")
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	attempts, err := s.attempts.CompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	attempts = domain.CompletedOnly(attempts)
	domain.SortHistory(attempts)

	entries = make([]domain.HistoryEntry, 0, len(attempts))
	for _, a := range attempts {
		if a.UserID != userID {
			continue
		}
		entries = append(entries, a.HistoryEntry())
	}
	return entries, nil
}

// ImportQuestions feeds externally supplied records into the bank.
func (s *QuizService) ImportQuestions(ctx context.Context, records []domain.Question) (report domain.ImportReport, err error) {
	ctx, span := tracer.Start(ctx, "QuizService.ImportQuestions")
	defer func() { endSpan(span, err) }()

	report, err = s.bank.BulkImport(ctx, records)
	if err != nil {
		return report, err
	}
	s.log.Info("questions imported", "received", report.Received, "imported", report.Imported,
		"duplicates", report.Duplicates, "rejected", report.Rejected)
	return report, nil
}

// discard abandons an attempt that lost the race for the user's binding, so it never
// shows up as a second in-progress attempt.
func (s *QuizService) discard(ctx context.Context, attempt domain.Attempt) {
	abandoned, err := abandonAttempt(attempt, s.now())
	if err == nil {
		err = s.attempts.UpdateAttempt(ctx, abandoned, attempt.Revision)
	}
	if err != nil {
		s.log.Warn("abandon unbound attempt", "attemptId", attempt.ID, "error", err)
	}
}

func (s *QuizService) loadOwned(ctx context.Context, userID, attemptID string) (domain.Attempt, error) {
	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if attempt.UserID != userID {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *QuizService) prompt(attempt domain.Attempt, q domain.Question) domain.QuestionPrompt {
	return domain.QuestionPrompt{
		AttemptID:      attempt.ID,
		QuestionNumber: attempt.Position + 1,
		TotalQuestions: attempt.TotalQuestions(),
		Question:       s.bank.View(q),
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
