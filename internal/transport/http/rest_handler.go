package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/logger"
)

// Identity headers are set by the upstream authentication proxy and trusted as is.
const (
	headerUserID   = "X-User-ID"
	headerUserName = "X-User-Name"
)

// RESTHandler exposes the quiz use cases as JSON over plain HTTP.
type RESTHandler struct {
	service *app.QuizService
	timeout time.Duration
	log     *logger.Logger
}

func NewRESTHandler(service *app.QuizService, timeout time.Duration, log *logger.Logger) *RESTHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &RESTHandler{service: service, timeout: timeout, log: log}
}

func (h *RESTHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /quiz/start", h.start)
	mux.HandleFunc("POST /quiz/answer", h.answer)
	mux.HandleFunc("POST /quiz/abandon", h.abandon)
	mux.HandleFunc("GET /quiz/current", h.current)
	mux.HandleFunc("GET /quiz/leaderboard", h.leaderboard)
	mux.HandleFunc("GET /quiz/history", h.history)
}

type answerRequest struct {
	AttemptID  string `json:"attemptId"`
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type abandonRequest struct {
	AttemptID string `json:"attemptId"`
}

func (h *RESTHandler) start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	prompt, err := h.service.Start(ctx, playerFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

func (h *RESTHandler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{"bad_request", "invalid answer payload"})
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.service.SubmitAnswer(ctx, r.Header.Get(headerUserID), domain.AnswerSubmission{
		AttemptID:  req.AttemptID,
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presentAnswer(res))
}

func (h *RESTHandler) abandon(w http.ResponseWriter, r *http.Request) {
	var req abandonRequest
	// the body is optional; without it the bound attempt is abandoned
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorPayload{"bad_request", "invalid abandon payload"})
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.service.Abandon(ctx, r.Header.Get(headerUserID), req.AttemptID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) current(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	prompt, err := h.service.Current(ctx, r.Header.Get(headerUserID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

func (h *RESTHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorPayload{"bad_request", "limit must be an integer"})
			return
		}
		limit = n
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	entries, err := h.service.Leaderboard(ctx, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": presentLeaderboard(entries)})
}

func (h *RESTHandler) history(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	entries, err := h.service.History(ctx, r.Header.Get(headerUserID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": presentHistory(entries)})
}

func (h *RESTHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *RESTHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, payload)
}

func playerFrom(r *http.Request) domain.Player {
	return domain.Player{
		UserID:      r.Header.Get(headerUserID),
		DisplayName: r.Header.Get(headerUserName),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
