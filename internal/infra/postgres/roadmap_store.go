package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"learning-progress-service/internal/domain"
)

type roadmapRow struct {
	bun.BaseModel `bun:"table:roadmaps"`

	Name      string                 `bun:"name,pk"`
	Modules   []domain.RoadmapModule `bun:"modules,type:jsonb,notnull"`
	UpdatedAt time.Time              `bun:"updated_at,notnull,default:current_timestamp"`
}

// RoadmapStore persists roadmaps in Postgres, one row per roadmap with its modules as jsonb.
type RoadmapStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewRoadmapStore(db *bun.DB) *RoadmapStore {
	return &RoadmapStore{db: db, now: time.Now}
}

func (s *RoadmapStore) LoadRoadmap(ctx context.Context, name string) (domain.Roadmap, error) {
	var row roadmapRow
	err := s.db.NewSelect().Model(&row).Where("name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Roadmap{}, domain.ErrRoadmapNotFound
	}
	if err != nil {
		return domain.Roadmap{}, domain.NewStorageError("load roadmap", err)
	}
	return row.roadmap(), nil
}

func (s *RoadmapStore) SaveRoadmap(ctx context.Context, r domain.Roadmap) error {
	row := newRoadmapRow(r, s.now())
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (name) DO UPDATE").
		Set("modules = EXCLUDED.modules").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return domain.NewStorageError("save roadmap", err)
}

func newRoadmapRow(r domain.Roadmap, now time.Time) roadmapRow {
	modules := r.Modules
	if modules == nil {
		modules = []domain.RoadmapModule{}
	}
	return roadmapRow{Name: r.Name, Modules: modules, UpdatedAt: now}
}

func (r roadmapRow) roadmap() domain.Roadmap {
	return domain.Roadmap{Name: r.Name, Modules: r.Modules}
}
