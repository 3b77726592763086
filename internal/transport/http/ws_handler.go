package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"learning-progress-service/internal/app"
	"learning-progress-service/internal/domain"
	"learning-progress-service/internal/quiz"
)

type WSHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
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

type selectPayload struct {
	OptionIndex *int `json:"optionIndex"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// questionView is a question as the player sees it, without the correct answer.
type questionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type attemptView struct {
	AttemptID      string       `json:"attemptId"`
	QuizID         string       `json:"quizId"`
	Title          string       `json:"title"`
	QuestionIndex  int          `json:"questionIndex"`
	TotalQuestions int          `json:"totalQuestions"`
	Question       questionView `json:"question"`
	Selected       *int         `json:"selected"`
}

type completedPayload struct {
	Result       *domain.QuizResult     `json:"result"`
	Progress     *domain.ProgressRecord `json:"progress"`
	LevelsGained int                    `json:"levelsGained"`
}

type completedBeforePayload struct {
	Result *domain.QuizResult `json:"result"`
}

func newAttemptView(a *quiz.Attempt) attemptView {
	idx, q := a.CurrentQuestion()
	view := attemptView{
		AttemptID:      a.ID(),
		QuizID:         a.Quiz().ID,
		Title:          a.Quiz().Title,
		QuestionIndex:  idx,
		TotalQuestions: len(a.Quiz().Questions),
		Question:       questionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options},
	}
	if choice, ok := a.State().Answers[idx]; ok {
		view.Selected = &choice
	}
	return view
}

// ServeWS upgrades the request and drives one quiz attempt over the socket.
// Passing attemptId resumes an attempt after a reconnect.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	attemptID := r.URL.Query().Get("attemptId")
	userID := userIDFrom(r)
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or user", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("user", userID), zap.String("quiz", quizID))
	ctx := r.Context()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write failed", zap.Error(err))
				return
			}
		}
	}()

	sendError := func(err error) {
		send <- outboundMessage[any]{Type: "error", Payload: newErrorPayload(err)}
	}

	attempt, ok := h.open(ctx, userID, quizID, attemptID, send, sendError)
	if ok {
		h.play(ctx, conn, attempt, userID, send, sendError, log)
	}

	close(send)
	<-writerDone
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// open starts or resumes the attempt. It reports false when there is nothing to play.
func (h *WSHandler) open(ctx context.Context, userID, quizID, attemptID string, send chan<- outboundMessage[any], sendError func(error)) (*quiz.Attempt, bool) {
	if attemptID != "" {
		attempt, err := h.service.Attempt(ctx, userID, attemptID)
		if err == nil && attempt.Quiz().ID != quizID {
			err = domain.ErrAttemptNotFound
		}
		if err != nil {
			sendError(err)
			return nil, false
		}
		send <- outboundMessage[any]{Type: "state", Payload: newAttemptView(attempt)}
		return attempt, true
	}

	outcome, err := h.service.Start(ctx, userID, quizID)
	if err != nil {
		sendError(err)
		return nil, false
	}
	if outcome.Previous != nil {
		send <- outboundMessage[any]{Type: "completedBefore", Payload: completedBeforePayload{Result: outcome.Previous}}
		return nil, false
	}
	send <- outboundMessage[any]{Type: "started", Payload: newAttemptView(outcome.Attempt)}
	return outcome.Attempt, true
}

// play handles inbound messages until the attempt completes, is abandoned or the peer leaves.
// A disconnect keeps the attempt so the client can resume it.
func (h *WSHandler) play(ctx context.Context, conn *websocket.Conn, attempt *quiz.Attempt, userID string, send chan<- outboundMessage[any], sendError func(error), log *zap.Logger) {
	attemptID := attempt.ID()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			log.Debug("ws closed", zap.String("attempt", attemptID), zap.Error(err))
			return
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.OptionIndex == nil {
				sendError(domain.ErrOptionOutOfRange)
				continue
			}
			updated, err := h.service.SelectAnswer(ctx, userID, attemptID, *payload.OptionIndex)
			if err != nil {
				sendError(err)
				continue
			}
			send <- outboundMessage[any]{Type: "state", Payload: newAttemptView(updated)}
		case "advance":
			outcome, err := h.service.Advance(ctx, userID, attemptID)
			if err != nil {
				sendError(err)
				continue
			}
			if outcome.Completed {
				send <- outboundMessage[any]{Type: "completed", Payload: completedPayload{
					Result:       outcome.Result,
					Progress:     outcome.Progress,
					LevelsGained: outcome.LevelsGained,
				}}
				return
			}
			send <- outboundMessage[any]{Type: "state", Payload: newAttemptView(outcome.Attempt)}
		case "abandon":
			if err := h.service.Abandon(ctx, userID, attemptID); err != nil {
				sendError(err)
				continue
			}
			send <- outboundMessage[any]{Type: "abandoned", Payload: struct{}{}}
			return
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type", Code: "validation"}}
		}
	}
}
