package http

import (
	"net/http"

	"go.uber.org/zap"

	"learning-progress-service/internal/app"
	"learning-progress-service/internal/metrics"
)

// NewRouter wires every endpoint. Each route is timed under its pattern.
func NewRouter(quizzes *app.QuizService, progress *app.ProgressService, courses *app.CourseService, m *metrics.Metrics, log *zap.Logger) http.Handler {
	ws := NewWSHandler(quizzes, log)
	api := NewProgressHandler(progress, quizzes, log)
	course := NewCourseHandler(courses, log)

	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, m.Middleware(pattern, h))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	route("GET /ws", ws.ServeWS)
	route("GET /v1/progress", api.GetProgress)
	route("POST /v1/progress/activity", api.RecordActivity)
	route("POST /v1/progress/xp", api.AwardXP)
	route("GET /v1/stats", api.GetStats)
	route("POST /v1/stats/minutes", api.RecordMinutes)
	route("GET /v1/quizzes/{quizId}/result", api.GetResult)
	route("GET /v1/roadmaps/{name}/progress", course.GetProgress)
	return mux
}
