package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DefaultQuestionCount is the fixed length of an attempt.
const DefaultQuestionCount = 10

// Player is the authenticated identity supplied by the upstream auth collaborator.
type Player struct {
	UserID      string
	DisplayName string
}

type AttemptStatus string

const (
	StatusInProgress AttemptStatus = "in-progress"
	StatusCompleted  AttemptStatus = "completed"
	StatusAbandoned  AttemptStatus = "abandoned"
)

// AnswerRecord is an immutable, append-only record of one answered question.
type AnswerRecord struct {
	QuestionID     string    `json:"questionId"`
	Answer         string    `json:"answer"`
	ShownAt        time.Time `json:"shownAt"`
	AnsweredAt     time.Time `json:"answeredAt"`
	ElapsedSeconds float64   `json:"elapsedSeconds"`
	Grade          int       `json:"grade"`
	Score          float64   `json:"score"`
}

// Attempt is one user's run through a fixed sequence of questions.
// ShownAt is the time the question at Position was served.
type Attempt struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName"`
	QuestionIDs []string       `json:"questionIds"`
	Answers     []AnswerRecord `json:"answers"`
	Position    int            `json:"position"`
	TotalScore  float64        `json:"totalScore"`
	Status      AttemptStatus  `json:"status"`
	StartedAt   time.Time      `json:"startedAt"`
	ShownAt     time.Time      `json:"shownAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	AbandonedAt *time.Time     `json:"abandonedAt,omitempty"`
	Revision    int64          `json:"revision"`
}

// NewAttempt builds an in-progress attempt positioned on its first question.
func NewAttempt(id string, player Player, questionIDs []string, now time.Time) Attempt {
	return Attempt{
		ID:          id,
		UserID:      player.UserID,
		DisplayName: player.DisplayName,
		QuestionIDs: append([]string(nil), questionIDs...),
		Answers:     []AnswerRecord{},
		Status:      StatusInProgress,
		StartedAt:   now,
		ShownAt:     now,
		Revision:    1,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (a Attempt) Clone() Attempt {
	out := a
	out.QuestionIDs = append([]string(nil), a.QuestionIDs...)
	out.Answers = append([]AnswerRecord{}, a.Answers...)
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		out.CompletedAt = &t
	}
	if a.AbandonedAt != nil {
		t := *a.AbandonedAt
		out.AbandonedAt = &t
	}
	return out
}

func (a Attempt) TotalQuestions() int {
	return len(a.QuestionIDs)
}

// Active reports whether the attempt still accepts answers.
func (a Attempt) Active() bool {
	return a.Status == StatusInProgress && a.Position < len(a.QuestionIDs)
}

// CurrentQuestionID returns the question awaiting an answer, or "" when none is.
func (a Attempt) CurrentQuestionID() string {
	if !a.Active() {
		return ""
	}
	return a.QuestionIDs[a.Position]
}

func (a Attempt) CorrectCount() int {
	n := 0
	for _, rec := range a.Answers {
		if rec.Grade == 1 {
			n++
		}
	}
	return n
}

func (a Attempt) TotalElapsed() float64 {
	total := 0.0
	for _, rec := range a.Answers {
		total += rec.ElapsedSeconds
	}
	return total
}

func (a Attempt) Summary() Summary {
	return Summary{
		AttemptID:      a.ID,
		TotalScore:     a.TotalScore,
		TotalQuestions: a.TotalQuestions(),
		CorrectAnswers: a.CorrectCount(),
		TotalSeconds:   a.TotalElapsed(),
	}
}

// Validate checks the structural invariants of a stored attempt.
func (a Attempt) Validate() error {
	switch {
	case a.ID == "" || a.UserID == "":
		return fmt.Errorf("%w: attempt missing id or owner", ErrMalformedRecord)
	case len(a.QuestionIDs) == 0:
		return fmt.Errorf("%w: attempt %s has no questions", ErrMalformedRecord, a.ID)
	case a.Position < 0 || a.Position > len(a.QuestionIDs):
		return fmt.Errorf("%w: attempt %s position %d out of range", ErrMalformedRecord, a.ID, a.Position)
	case len(a.Answers) != a.Position:
		return fmt.Errorf("%w: attempt %s has %d answers at position %d", ErrMalformedRecord, a.ID, len(a.Answers), a.Position)
	}

	sum := 0.0
	for _, rec := range a.Answers {
		sum += rec.Score
	}
	if math.Abs(sum-a.TotalScore) > 1e-6 {
		return fmt.Errorf("%w: attempt %s total score does not match answers", ErrMalformedRecord, a.ID)
	}

	switch a.Status {
	case StatusInProgress:
		if a.Position == len(a.QuestionIDs) {
			return fmt.Errorf("%w: attempt %s is in progress with no questions left", ErrMalformedRecord, a.ID)
		}
	case StatusCompleted:
		if a.CompletedAt == nil || a.Position != len(a.QuestionIDs) {
			return fmt.Errorf("%w: completed attempt %s is inconsistent", ErrMalformedRecord, a.ID)
		}
	case StatusAbandoned:
	default:
		return fmt.Errorf("%w: attempt %s has unknown status %q", ErrMalformedRecord, a.ID, a.Status)
	}
	return nil
}

// DecodeAttempt unmarshals and validates a stored attempt.
func DecodeAttempt(data []byte) (Attempt, error) {
	var a Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		return Attempt{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if a.Answers == nil {
		a.Answers = []AnswerRecord{}
	}
	if err := a.Validate(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// QuestionPrompt is a served question together with progress counters.
type QuestionPrompt struct {
	AttemptID      string       `json:"attemptId"`
	QuestionNumber int          `json:"questionNumber"`
	TotalQuestions int          `json:"totalQuestions"`
	Question       QuestionView `json:"question"`
}

// Summary is the final result of a completed attempt.
type Summary struct {
	AttemptID      string  `json:"attemptId"`
	TotalScore     float64 `json:"totalScore"`
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalSeconds   float64 `json:"timeSpent"`
}

// AnswerSubmission models an answer sent by a client. AttemptID falls back to the
// user's bound attempt; QuestionID, when set, pins the submission to one position.
type AnswerSubmission struct {
	AttemptID  string
	QuestionID string
	Answer     string
}

// SubmitResult carries either the next question or the final summary.
type SubmitResult struct {
	Correct       bool
	QuestionScore float64
	Next          *QuestionPrompt
	Summary       *Summary
}

// LeaderboardEntry exposes only what is needed for display.
type LeaderboardEntry struct {
	DisplayName    string    `json:"displayName"`
	Score          float64   `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	CompletedAt    time.Time `json:"completedAt"`
}

// HistoryEntry is one of a user's own completed attempts.
type HistoryEntry struct {
	AttemptID      string    `json:"attemptId"`
	Score          float64   `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}
