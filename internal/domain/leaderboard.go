package domain

import (
	"sort"
	"time"
)

// SortLeaderboard orders completed attempts by score desc, then earliest completion,
// then id, so the result never depends on storage iteration order.
func SortLeaderboard(attempts []Attempt) {
	sort.SliceStable(attempts, func(i, j int) bool {
		a, b := attempts[i], attempts[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if ca, cb := completedAt(a), completedAt(b); !ca.Equal(cb) {
			return ca.Before(cb)
		}
		return a.ID < b.ID
	})
}

// SortHistory orders attempts most recent completion first.
func SortHistory(attempts []Attempt) {
	sort.SliceStable(attempts, func(i, j int) bool {
		a, b := attempts[i], attempts[j]
		if ca, cb := completedAt(a), completedAt(b); !ca.Equal(cb) {
			return ca.After(cb)
		}
		return a.ID < b.ID
	})
}

// CompletedOnly drops every attempt that is not completed.
func CompletedOnly(attempts []Attempt) []Attempt {
	out := make([]Attempt, 0, len(attempts))
	for _, a := range attempts {
		if a.Status == StatusCompleted && a.CompletedAt != nil {
			out = append(out, a)
		}
	}
	return out
}

func (a Attempt) LeaderboardEntry() LeaderboardEntry {
	return LeaderboardEntry{
		DisplayName:    a.DisplayName,
		Score:          a.TotalScore,
		CorrectAnswers: a.CorrectCount(),
		CompletedAt:    completedAt(a),
	}
}

func (a Attempt) HistoryEntry() HistoryEntry {
	return HistoryEntry{
		AttemptID:      a.ID,
		Score:          a.TotalScore,
		CorrectAnswers: a.CorrectCount(),
		TotalQuestions: a.TotalQuestions(),
		CompletedAt:    completedAt(a),
	}
}

func completedAt(a Attempt) time.Time {
	if a.CompletedAt != nil {
		return *a.CompletedAt
	}
	return time.Time{}
}
