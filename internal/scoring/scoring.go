// Package scoring implements the time-decay score awarded for a single answer.
package scoring

import (
	"fmt"
	"math"
	"time"

	"trivia-quiz-service/internal/domain"
)

const (
	// MaxPoints is awarded for a correct answer given instantly.
	MaxPoints = 100.0
	// DecayRate is the per-second exponential decay constant.
	DecayRate = 0.2
)

// Score returns MaxPoints * grade * e^(-DecayRate * elapsedSeconds).
func Score(grade int, elapsedSeconds float64) (float64, error) {
	if grade != 0 && grade != 1 {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, grade)
	}
	if math.IsNaN(elapsedSeconds) || elapsedSeconds < 0 {
		return 0, fmt.Errorf("%w: elapsed %v seconds", domain.ErrInvalidTiming, elapsedSeconds)
	}
	if grade == 0 {
		return 0, nil
	}
	return MaxPoints * math.Exp(-DecayRate*elapsedSeconds), nil
}

// Elapsed returns the seconds between shownAt and answeredAt. A negative span means a
// clock or protocol fault upstream and is rejected rather than clamped.
func Elapsed(shownAt, answeredAt time.Time) (float64, error) {
	d := answeredAt.Sub(shownAt)
	if d < 0 {
		return 0, fmt.Errorf("%w: answered %s before shown", domain.ErrInvalidTiming, -d)
	}
	return d.Seconds(), nil
}

// Grade is 1 only for an exact, case-sensitive match.
func Grade(submitted, correct string) int {
	if submitted == correct {
		return 1
	}
	return 0
}
