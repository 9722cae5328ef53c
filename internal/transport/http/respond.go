package http

import (
	"context"
	"errors"
	"math"
	"net/http"

	"trivia-quiz-service/internal/domain"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps domain errors to an HTTP status and a stable client-facing code.
func classify(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorPayload{"unauthenticated", err.Error()}
	case errors.Is(err, domain.ErrInsufficientInventory):
		return http.StatusInternalServerError, errorPayload{"insufficient_inventory", err.Error()}
	case errors.Is(err, domain.ErrAlreadyActive):
		return http.StatusConflict, errorPayload{"already_active", err.Error()}
	case errors.Is(err, domain.ErrAttemptNotFound):
		return http.StatusNotFound, errorPayload{"attempt_not_found", err.Error()}
	case errors.Is(err, domain.ErrAttemptNotActive):
		return http.StatusConflict, errorPayload{"attempt_not_active", err.Error()}
	case errors.Is(err, domain.ErrInvalidTiming):
		return http.StatusUnprocessableEntity, errorPayload{"invalid_timing", err.Error()}
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, errorPayload{"store_unavailable", "storage is temporarily unavailable, retry later"}
	default:
		return http.StatusInternalServerError, errorPayload{"internal", "internal error"}
	}
}

type answerResult struct {
	WasCorrect    bool                   `json:"wasCorrect"`
	QuestionScore float64                `json:"questionScore"`
	NextQuestion  *domain.QuestionPrompt `json:"nextQuestion,omitempty"`
	Result        *domain.Summary        `json:"result,omitempty"`
}

func presentAnswer(res domain.SubmitResult) answerResult {
	out := answerResult{
		WasCorrect:    res.Correct,
		QuestionScore: round2(res.QuestionScore),
		NextQuestion:  res.Next,
	}
	if res.Summary != nil {
		summary := *res.Summary
		summary.TotalScore = round2(summary.TotalScore)
		summary.TotalSeconds = round2(summary.TotalSeconds)
		out.Result = &summary
	}
	return out
}

func presentLeaderboard(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, len(entries))
	for i, e := range entries {
		e.Score = round2(e.Score)
		out[i] = e
	}
	return out
}

func presentHistory(entries []domain.HistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(entries))
	for i, e := range entries {
		e.Score = round2(e.Score)
		out[i] = e
	}
	return out
}

// round2 is display rounding only; stored scores keep full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
