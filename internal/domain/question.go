package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type QuestionType string

const (
	QuestionMultiple QuestionType = "multiple"
	QuestionBoolean  QuestionType = "boolean"
)

// Question is an immutable catalog entry.
type Question struct {
	ID               string       `json:"id"`
	Prompt           string       `json:"prompt"`
	Category         string       `json:"category"`
	Difficulty       Difficulty   `json:"difficulty"`
	Type             QuestionType `json:"type"`
	CorrectAnswer    string       `json:"correctAnswer"`
	IncorrectAnswers []string     `json:"incorrectAnswers"`
}

// Normalize fills schema defaults (medium, multiple) and validates the record.
func (q Question) Normalize() (Question, error) {
	if q.Difficulty == "" {
		q.Difficulty = DifficultyMedium
	}
	if q.Type == "" {
		q.Type = QuestionMultiple
	}
	if err := q.validateContent(); err != nil {
		return Question{}, err
	}
	q.IncorrectAnswers = append([]string(nil), q.IncorrectAnswers...)
	return q, nil
}

// Validate checks a stored question, including its identifier.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	return q.validateContent()
}

func (q Question) validateContent() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: missing prompt", ErrInvalidQuestion)
	}
	if q.CorrectAnswer == "" {
		return fmt.Errorf("%w: missing correct answer", ErrInvalidQuestion)
	}
	if len(q.IncorrectAnswers) == 0 {
		return fmt.Errorf("%w: at least one incorrect answer is required", ErrInvalidQuestion)
	}
	for _, a := range q.IncorrectAnswers {
		if a == "" {
			return fmt.Errorf("%w: empty incorrect answer", ErrInvalidQuestion)
		}
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidQuestion, q.Difficulty)
	}
	switch q.Type {
	case QuestionMultiple, QuestionBoolean:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}
	return nil
}

// ContentHash identifies a question by its content so repeated imports upsert instead of duplicating.
func (q Question) ContentHash() string {
	incorrect := append([]string(nil), q.IncorrectAnswers...)
	sort.Strings(incorrect)

	h := sha256.New()
	for _, part := range append([]string{string(q.Type), q.Prompt, q.CorrectAnswer}, incorrect...) {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DecodeQuestion unmarshals and validates a stored question.
func DecodeQuestion(data []byte) (Question, error) {
	var q Question
	if err := json.Unmarshal(data, &q); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := q.Validate(); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return q, nil
}

// QuestionView is what a player sees: the answer is stripped and options are shuffled.
type QuestionView struct {
	ID         string       `json:"id"`
	Prompt     string       `json:"prompt"`
	Category   string       `json:"category"`
	Difficulty Difficulty   `json:"difficulty"`
	Type       QuestionType `json:"type"`
	Options    []string     `json:"options"`
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Received   int `json:"received"`
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
}
