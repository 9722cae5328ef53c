package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/logger"
)

type WSHandler struct {
	service  *app.QuizService
	timeout  time.Duration
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, timeout time.Duration, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &WSHandler{
		service: service,
		timeout: timeout,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsAnswerPayload struct {
	AttemptID  string `json:"attemptId"`
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type wsAttemptPayload struct {
	AttemptID string `json:"attemptId"`
}

type wsLeaderboardPayload struct {
	Limit int `json:"limit"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and serves one player's quiz over it.
// userId and name come from the upstream authentication proxy.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	player := domain.Player{
		UserID:      r.URL.Query().Get("userId"),
		DisplayName: r.URL.Query().Get("name"),
	}
	if player.UserID == "" || player.DisplayName == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := h.log.With("userId", player.UserID)
	log.Debug("ws connected")

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply := h.dispatch(r.Context(), player, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("ws write error", "error", err)
			break
		}
	}
	log.Debug("ws disconnected")
}

func (h *WSHandler) dispatch(parent context.Context, player domain.Player, inbound inboundMessage) outboundMessage[any] {
	ctx, cancel := parent, context.CancelFunc(func() {})
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, h.timeout)
	}
	defer cancel()

	switch inbound.Type {
	case "start":
		prompt, err := h.service.Start(ctx, player)
		if err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "question", Payload: prompt}

	case "answer":
		var payload wsAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{"bad_request", "invalid answer payload"}}
		}
		res, err := h.service.SubmitAnswer(ctx, player.UserID, domain.AnswerSubmission{
			AttemptID:  payload.AttemptID,
			QuestionID: payload.QuestionID,
			Answer:     payload.Answer,
		})
		if err != nil {
			return h.errorMessage(err)
		}
		if res.Summary != nil {
			return outboundMessage[any]{Type: "completed", Payload: presentAnswer(res)}
		}
		return outboundMessage[any]{Type: "answerResult", Payload: presentAnswer(res)}

	case "current":
		prompt, err := h.service.Current(ctx, player.UserID)
		if err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "question", Payload: prompt}

	case "abandon":
		var payload wsAttemptPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return outboundMessage[any]{Type: "error", Payload: errorPayload{"bad_request", "invalid abandon payload"}}
			}
		}
		if err := h.service.Abandon(ctx, player.UserID, payload.AttemptID); err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "abandoned", Payload: payload}

	case "leaderboard":
		var payload wsLeaderboardPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return outboundMessage[any]{Type: "error", Payload: errorPayload{"bad_request", "invalid leaderboard payload"}}
			}
		}
		entries, err := h.service.Leaderboard(ctx, payload.Limit)
		if err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "leaderboard", Payload: presentLeaderboard(entries)}

	case "history":
		entries, err := h.service.History(ctx, player.UserID)
		if err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "history", Payload: presentHistory(entries)}

	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{"bad_request", "unsupported message type"}}
	}
}

func (h *WSHandler) errorMessage(err error) outboundMessage[any] {
	status, payload := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("ws request failed", "error", err)
	}
	return outboundMessage[any]{Type: "error", Payload: payload}
}
