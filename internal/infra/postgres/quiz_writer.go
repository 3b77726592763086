package postgres

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"learning-progress-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID        string                `bun:"id,pk"`
	Data      domain.QuizDefinition `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time             `bun:"updated_at,notnull,default:current_timestamp"`
}

// QuizWriter upserts quiz content; QuizLoader reads it back.
type QuizWriter struct {
	db *bun.DB
}

func NewQuizWriter(db *bun.DB) *QuizWriter {
	return &QuizWriter{db: db}
}

// Upsert stores def under its ID, replacing earlier content.
func (w *QuizWriter) Upsert(ctx context.Context, def domain.QuizDefinition) error {
	row := quizRow{ID: def.ID, Data: def, UpdatedAt: time.Now()}
	_, err := w.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return domain.NewStorageError("upsert quiz", err)
}
