package app

import (
	"context"

	"learning-progress-service/internal/domain"
)

// ProgressStore persists progress records and quiz results. Absent records are reported
// with errors matching domain.ErrNotFound; failures with *domain.StorageError.
// Writes are last-write-wins; there is no atomicity across the two record kinds.
type ProgressStore interface {
	LoadProgress(ctx context.Context, userID string) (domain.ProgressRecord, error)
	SaveProgress(ctx context.Context, userID string, progress domain.ProgressRecord) error
	LoadQuizResult(ctx context.Context, userID, quizID string) (domain.QuizResult, error)
	SaveQuizResult(ctx context.Context, userID, quizID string, result domain.QuizResult) error
}

// StatsStore persists weekly learning minutes.
type StatsStore interface {
	LoadStats(ctx context.Context, userID string) (domain.WeeklyStats, error)
	SaveStats(ctx context.Context, userID string, stats domain.WeeklyStats) error
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// AttemptRepository keeps in-flight attempts between requests (in-memory, Redis, etc).
type AttemptRepository interface {
	Save(ctx context.Context, state domain.QuizAttemptState) error
	Get(ctx context.Context, attemptID string) (domain.QuizAttemptState, error)
	Delete(ctx context.Context, attemptID string) error
}

// RoadmapStore persists course roadmaps by name. A missing roadmap is reported with an
// error matching domain.ErrRoadmapNotFound.
type RoadmapStore interface {
	LoadRoadmap(ctx context.Context, name string) (domain.Roadmap, error)
	SaveRoadmap(ctx context.Context, roadmap domain.Roadmap) error
}
