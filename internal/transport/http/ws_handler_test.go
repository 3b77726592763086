package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"learning-progress-service/internal/app"
	"learning-progress-service/internal/domain"
	"learning-progress-service/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	conn := dial(t, server, "/ws?quizId=quiz-1&userId=u1")
	defer conn.Close()

	_, started := readNext(conn, t, "started")
	if started["questionIndex"].(float64) != 0 || started["totalQuestions"].(float64) != 2 {
		t.Fatalf("unexpected start payload %+v", started)
	}
	question := started["question"].(map[string]any)
	if _, leaked := question["correctAnswer"]; leaked {
		t.Fatalf("correct answer must not be sent to the player")
	}

	send(t, conn, "select", map[string]any{"optionIndex": 1})
	_, state := readNext(conn, t, "state")
	if state["selected"].(float64) != 1 {
		t.Fatalf("expected selection echoed, got %+v", state)
	}
	send(t, conn, "advance", nil)
	_, state = readNext(conn, t, "state")
	if state["questionIndex"].(float64) != 1 {
		t.Fatalf("expected second question, got %+v", state)
	}

	send(t, conn, "advance", nil)
	_, errPayload := readNext(conn, t, "error")
	if errPayload["code"] != "invalid_state" {
		t.Fatalf("expected invalid_state for unanswered advance, got %+v", errPayload)
	}

	send(t, conn, "select", map[string]any{"optionIndex": 0})
	readNext(conn, t, "state")
	send(t, conn, "advance", nil)
	_, completed := readNext(conn, t, "completed")
	result := completed["result"].(map[string]any)
	progress := completed["progress"].(map[string]any)
	if result["score"].(float64) != 1 || result["xpAwarded"].(float64) != 10 {
		t.Fatalf("unexpected result %+v", result)
	}
	if progress["xp"].(float64) != 10 {
		t.Fatalf("unexpected progress %+v", progress)
	}

	again := dial(t, server, "/ws?quizId=quiz-1&userId=u1")
	defer again.Close()
	_, previous := readNext(again, t, "completedBefore")
	if previous["result"].(map[string]any)["score"].(float64) != 1 {
		t.Fatalf("expected stored result, got %+v", previous)
	}
}

func TestWebSocketResumesAttempt(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	first := dial(t, server, "/ws?quizId=quiz-1&userId=u1")
	_, started := readNext(first, t, "started")
	send(t, first, "select", map[string]any{"optionIndex": 0})
	readNext(first, t, "state")
	first.Close()

	attemptID := started["attemptId"].(string)
	resumed := dial(t, server, "/ws?quizId=quiz-1&userId=u1&attemptId="+attemptID)
	defer resumed.Close()
	_, state := readNext(resumed, t, "state")
	if state["attemptId"] != attemptID || state["selected"].(float64) != 0 {
		t.Fatalf("expected resumed attempt, got %+v", state)
	}

	other := dial(t, server, "/ws?quizId=quiz-1&userId=u2&attemptId="+attemptID)
	defer other.Close()
	_, errPayload := readNext(other, t, "error")
	if errPayload["code"] != "not_found" {
		t.Fatalf("expected not_found for a foreign attempt, got %+v", errPayload)
	}
}

func TestWebSocketRejectsBadInput(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?quizId=quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without a user, got %d", resp.StatusCode)
	}

	conn := dial(t, server, "/ws?quizId=missing&userId=u1")
	defer conn.Close()
	_, errPayload := readNext(conn, t, "error")
	if errPayload["code"] != "not_found" {
		t.Fatalf("expected not_found, got %+v", errPayload)
	}

	conn2 := dial(t, server, "/ws?quizId=quiz-1&userId=u1")
	defer conn2.Close()
	readNext(conn2, t, "started")
	send(t, conn2, "select", map[string]any{"optionIndex": 7})
	_, errPayload = readNext(conn2, t, "error")
	if errPayload["code"] != "validation" {
		t.Fatalf("expected validation error, got %+v", errPayload)
	}
	send(t, conn2, "dance", nil)
	readNext(conn2, t, "error")
	send(t, conn2, "abandon", nil)
	readNext(conn2, t, "abandoned")
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%+v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewProgressStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuiz()), time.Minute)
	progress := app.NewProgressService(store, store)
	quizzes := app.NewQuizService(quizRepo, memory.NewAttemptStore(), progress)
	courses := app.NewCourseService(memory.NewRoadmapStore(nil), store)
	return NewRouter(quizzes, progress, courses, nil, nil)
}

func sampleQuiz() map[string]domain.QuizDefinition {
	return map[string]domain.QuizDefinition{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Arithmetic",
			Questions: []domain.Question{
				{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswerIndex: 1},
				{ID: "q2", Prompt: "What is 3 * 3?", Options: []string{"6", "9"}, CorrectAnswerIndex: 1},
			},
		},
	}
}
