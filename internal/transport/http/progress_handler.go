package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"learning-progress-service/internal/app"
	"learning-progress-service/internal/domain"
	"learning-progress-service/internal/progression"
)

// ProgressHandler serves the JSON API for progress, learning stats and stored quiz results.
type ProgressHandler struct {
	progress *app.ProgressService
	quizzes  *app.QuizService
	log      *zap.Logger
}

func NewProgressHandler(progress *app.ProgressService, quizzes *app.QuizService, log *zap.Logger) *ProgressHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressHandler{progress: progress, quizzes: quizzes, log: log}
}

type xpRequest struct {
	Amount *int `json:"amount"`
}

type minutesRequest struct {
	Minutes *int `json:"minutes"`
}

type statsResponse struct {
	Days         []domain.DayMinutes `json:"days"`
	TotalMinutes int                 `json:"totalMinutes"`
}

var errBadBody = fmt.Errorf("%w: malformed request body", domain.ErrValidation)

func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	rec, err := h.progress.Progress(r.Context(), userIDFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ProgressHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	rec, err := h.progress.RecordActivity(r.Context(), userIDFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ProgressHandler) AwardXP(w http.ResponseWriter, r *http.Request) {
	var req xpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		h.fail(w, r, errBadBody)
		return
	}
	award, err := h.progress.AwardXP(r.Context(), userIDFrom(r), *req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, award)
}

func (h *ProgressHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.progress.Stats(r.Context(), userIDFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsResponse(stats))
}

func (h *ProgressHandler) RecordMinutes(w http.ResponseWriter, r *http.Request) {
	var req minutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Minutes == nil {
		h.fail(w, r, errBadBody)
		return
	}
	stats, err := h.progress.RecordMinutes(r.Context(), userIDFrom(r), *req.Minutes)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsResponse(stats))
}

func (h *ProgressHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.quizzes.Result(r.Context(), userIDFrom(r), r.PathValue("quizId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ProgressHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if _, status := classify(err); status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, err)
}

func newStatsResponse(stats domain.WeeklyStats) statsResponse {
	return statsResponse{Days: stats.Days, TotalMinutes: progression.TotalMinutes(stats)}
}
