package http

import (
	"net/http"

	"go.uber.org/zap"

	"learning-progress-service/internal/app"
)

// CourseHandler serves roadmap completion.
type CourseHandler struct {
	courses *app.CourseService
	log     *zap.Logger
}

func NewCourseHandler(courses *app.CourseService, log *zap.Logger) *CourseHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CourseHandler{courses: courses, log: log}
}

func (h *CourseHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.courses.Progress(r.Context(), userIDFrom(r), r.PathValue("name"))
	if err != nil {
		if _, status := classify(err); status >= http.StatusInternalServerError {
			h.log.Error("roadmap progress failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
