package scoring

import (
	"errors"
	"math"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestScoreInstantCorrectAnswer(t *testing.T) {
	got, err := Score(1, 0)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if math.Abs(got-100) > 1e-6 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestScoreStrictlyDecreasing(t *testing.T) {
	prev := math.Inf(1)
	for _, elapsed := range []float64{0, 0.001, 0.5, 1, 2, 5, 10, 30, 60} {
		got, err := Score(1, elapsed)
		if err != nil {
			t.Fatalf("score(%v): %v", elapsed, err)
		}
		if got >= prev {
			t.Fatalf("score not decreasing at %v: %v >= %v", elapsed, got, prev)
		}
		if got < 0 {
			t.Fatalf("negative score at %v", elapsed)
		}
		prev = got
	}

	five, _ := Score(1, 5)
	if math.Abs(five-100*math.Exp(-1)) > 1e-9 {
		t.Fatalf("unexpected score at 5s: %v", five)
	}
}

func TestScoreIncorrectIsZero(t *testing.T) {
	for _, elapsed := range []float64{0, 1, 1000} {
		got, err := Score(0, elapsed)
		if err != nil || got != 0 {
			t.Fatalf("expected 0 for incorrect answer at %v, got %v (%v)", elapsed, got, err)
		}
	}
}

func TestScoreRejectsInvalidInput(t *testing.T) {
	if _, err := Score(1, -0.5); !errors.Is(err, domain.ErrInvalidTiming) {
		t.Fatalf("expected invalid timing, got %v", err)
	}
	if _, err := Score(0, math.NaN()); !errors.Is(err, domain.ErrInvalidTiming) {
		t.Fatalf("expected invalid timing for NaN, got %v", err)
	}
	if _, err := Score(2, 1); !errors.Is(err, domain.ErrInvalidGrade) {
		t.Fatalf("expected invalid grade, got %v", err)
	}
}

func TestElapsed(t *testing.T) {
	shown := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	got, err := Elapsed(shown, shown.Add(1500*time.Millisecond))
	if err != nil || got != 1.5 {
		t.Fatalf("expected 1.5s, got %v (%v)", got, err)
	}
	if _, err := Elapsed(shown, shown.Add(-time.Second)); !errors.Is(err, domain.ErrInvalidTiming) {
		t.Fatalf("expected invalid timing, got %v", err)
	}
}

func TestGradeIsExactMatch(t *testing.T) {
	if Grade("Paris", "Paris") != 1 {
		t.Fatalf("expected exact match to be correct")
	}
	if Grade("paris", "Paris") != 0 || Grade("Paris ", "Paris") != 0 {
		t.Fatalf("expected case and whitespace sensitive grading")
	}
}
