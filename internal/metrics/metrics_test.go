package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestQuizCompletedCounts(t *testing.T) {
	m := New()
	m.QuizCompleted("quiz-1", 20, 0)
	m.QuizCompleted("quiz-1", 30, 1)

	if got := testutil.ToFloat64(m.QuizzesCompleted.WithLabelValues("quiz-1")); got != 2 {
		t.Fatalf("expected 2 completions, got %v", got)
	}
	if got := testutil.ToFloat64(m.XPAwarded); got != 50 {
		t.Fatalf("expected 50 xp, got %v", got)
	}
	if got := testutil.ToFloat64(m.LevelUps); got != 1 {
		t.Fatalf("expected 1 level-up, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.QuizCompleted("quiz-1", 10, 1)
	m.StorageFailed("save progress")

	h := m.Middleware("/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected handler status to pass through, got %d", rec.Code)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.StorageFailed("load progress")

	wrapped := m.Middleware("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`learning_storage_errors_total{op="load progress"} 1`,
		`learning_http_request_duration_seconds_count{method="GET",path="/ping",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, body)
		}
	}
}
