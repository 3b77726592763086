package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"learning-progress-service/internal/domain"
)

type progressRow struct {
	bun.BaseModel `bun:"table:user_progress"`

	UserID      string    `bun:"user_id,pk"`
	Level       int       `bun:"level,notnull"`
	XP          int       `bun:"xp,notnull"`
	NextLevelXP int       `bun:"next_level_xp,notnull"`
	StreakDays  int       `bun:"streak_days,notnull"`
	LastUpdate  time.Time `bun:"last_update,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type quizResultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	UserID         string                  `bun:"user_id,pk"`
	QuizID         string                  `bun:"quiz_id,pk"`
	Score          int                     `bun:"score,notnull"`
	TotalQuestions int                     `bun:"total_questions,notnull"`
	XPAwarded      int                     `bun:"xp_awarded,notnull"`
	PerQuestion    []domain.QuestionResult `bun:"per_question,type:jsonb,notnull"`
	CompletedAt    time.Time               `bun:"completed_at,notnull"`
	AttemptID      string                  `bun:"attempt_id,notnull"`
}

type statsRow struct {
	bun.BaseModel `bun:"table:learning_stats"`

	UserID    string              `bun:"user_id,pk"`
	Days      []domain.DayMinutes `bun:"days,type:jsonb,notnull"`
	UpdatedAt time.Time           `bun:"updated_at,notnull,default:current_timestamp"`
}

// ProgressStore persists progress, quiz results and learning stats in Postgres.
// Every save is an upsert, which gives last-write-wins.
type ProgressStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db, now: time.Now}
}

func (s *ProgressStore) LoadProgress(ctx context.Context, userID string) (domain.ProgressRecord, error) {
	var row progressRow
	err := s.db.NewSelect().Model(&row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProgressRecord{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.ProgressRecord{}, domain.NewStorageError("load progress", err)
	}
	return row.record(), nil
}

func (s *ProgressStore) SaveProgress(ctx context.Context, userID string, rec domain.ProgressRecord) error {
	row := newProgressRow(userID, rec, s.now())
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("level = EXCLUDED.level").
		Set("xp = EXCLUDED.xp").
		Set("next_level_xp = EXCLUDED.next_level_xp").
		Set("streak_days = EXCLUDED.streak_days").
		Set("last_update = EXCLUDED.last_update").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return domain.NewStorageError("save progress", err)
}

func (s *ProgressStore) LoadQuizResult(ctx context.Context, userID, quizID string) (domain.QuizResult, error) {
	var row quizResultRow
	err := s.db.NewSelect().Model(&row).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, domain.NewStorageError("load quiz result", err)
	}
	return row.result(), nil
}

func (s *ProgressStore) SaveQuizResult(ctx context.Context, userID, quizID string, result domain.QuizResult) error {
	row := newQuizResultRow(userID, quizID, result)
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (user_id, quiz_id) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("total_questions = EXCLUDED.total_questions").
		Set("xp_awarded = EXCLUDED.xp_awarded").
		Set("per_question = EXCLUDED.per_question").
		Set("completed_at = EXCLUDED.completed_at").
		Set("attempt_id = EXCLUDED.attempt_id").
		Exec(ctx)
	return domain.NewStorageError("save quiz result", err)
}

func (s *ProgressStore) LoadStats(ctx context.Context, userID string) (domain.WeeklyStats, error) {
	var row statsRow
	err := s.db.NewSelect().Model(&row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WeeklyStats{}, domain.ErrStatsNotFound
	}
	if err != nil {
		return domain.WeeklyStats{}, domain.NewStorageError("load stats", err)
	}
	return domain.WeeklyStats{Days: row.Days}, nil
}

func (s *ProgressStore) SaveStats(ctx context.Context, userID string, stats domain.WeeklyStats) error {
	row := statsRow{UserID: userID, Days: stats.Days, UpdatedAt: s.now()}
	if row.Days == nil {
		row.Days = []domain.DayMinutes{}
	}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("days = EXCLUDED.days").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return domain.NewStorageError("save stats", err)
}

func newProgressRow(userID string, rec domain.ProgressRecord, now time.Time) progressRow {
	return progressRow{
		UserID:      userID,
		Level:       rec.Level,
		XP:          rec.XP,
		NextLevelXP: rec.NextLevelXP,
		StreakDays:  rec.StreakDays,
		LastUpdate:  rec.LastUpdate,
		UpdatedAt:   now,
	}
}

func (r progressRow) record() domain.ProgressRecord {
	return domain.ProgressRecord{
		Level:       r.Level,
		XP:          r.XP,
		NextLevelXP: r.NextLevelXP,
		StreakDays:  r.StreakDays,
		LastUpdate:  r.LastUpdate,
	}
}

func newQuizResultRow(userID, quizID string, result domain.QuizResult) quizResultRow {
	perQuestion := result.PerQuestion
	if perQuestion == nil {
		perQuestion = []domain.QuestionResult{}
	}
	return quizResultRow{
		UserID:         userID,
		QuizID:         quizID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		XPAwarded:      result.XPAwarded,
		PerQuestion:    perQuestion,
		CompletedAt:    result.CompletedAt,
		AttemptID:      result.AttemptID,
	}
}

func (r quizResultRow) result() domain.QuizResult {
	return domain.QuizResult{
		QuizID:         r.QuizID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		PerQuestion:    r.PerQuestion,
		XPAwarded:      r.XPAwarded,
		CompletedAt:    r.CompletedAt,
		AttemptID:      r.AttemptID,
	}
}
