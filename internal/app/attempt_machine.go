package app

import (
	"fmt"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/scoring"
)

// recordAnswer applies one answer to a copy of the attempt. The returned attempt carries
// the next revision and is either positioned on the following question (shown at now)
// or completed. The input attempt is never modified.
func recordAnswer(attempt domain.Attempt, question domain.Question, answer string, now time.Time) (domain.Attempt, domain.AnswerRecord, error) {
	if !attempt.Active() {
		return domain.Attempt{}, domain.AnswerRecord{}, domain.ErrAttemptNotActive
	}
	if question.ID != attempt.CurrentQuestionID() {
		return domain.Attempt{}, domain.AnswerRecord{}, fmt.Errorf("%w: question %s is not current", domain.ErrAttemptNotActive, question.ID)
	}

	elapsed, err := scoring.Elapsed(attempt.ShownAt, now)
	if err != nil {
		return domain.Attempt{}, domain.AnswerRecord{}, err
	}
	grade := scoring.Grade(answer, question.CorrectAnswer)
	score, err := scoring.Score(grade, elapsed)
	if err != nil {
		return domain.Attempt{}, domain.AnswerRecord{}, err
	}

	record := domain.AnswerRecord{
		QuestionID:     question.ID,
		Answer:         answer,
		ShownAt:        attempt.ShownAt,
		AnsweredAt:     now,
		ElapsedSeconds: elapsed,
		Grade:          grade,
		Score:          score,
	}

	next := attempt.Clone()
	next.Answers = append(next.Answers, record)
	next.TotalScore += score
	next.Position++
	next.Revision++
	if next.Position == len(next.QuestionIDs) {
		completed := now
		next.Status = domain.StatusCompleted
		next.CompletedAt = &completed
	} else {
		next.ShownAt = now
	}
	return next, record, nil
}

// abandonAttempt moves an in-progress attempt to the abandoned terminal state.
func abandonAttempt(attempt domain.Attempt, now time.Time) (domain.Attempt, error) {
	if attempt.Status != domain.StatusInProgress {
		return domain.Attempt{}, domain.ErrAttemptNotActive
	}
	next := attempt.Clone()
	abandoned := now
	next.Status = domain.StatusAbandoned
	next.AbandonedAt = &abandoned
	next.Revision++
	return next, nil
}
