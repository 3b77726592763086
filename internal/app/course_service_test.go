package app_test

import (
	"context"
	"errors"
	"testing"

	"learning-progress-service/internal/app"
	"learning-progress-service/internal/domain"
	"learning-progress-service/internal/infra/memory"
)

func pythonRoadmap() domain.Roadmap {
	return domain.Roadmap{Name: "python", Modules: []domain.RoadmapModule{
		{Name: "Python", Subskills: []domain.Subskill{{Name: "Basics"}, {Name: "Control Flow"}}},
		{Name: "Projects"},
	}}
}

func TestCourseProgressFollowsCompletedQuizzes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	courses := app.NewCourseService(memory.NewRoadmapStore(nil), env.store)
	if err := courses.SaveRoadmap(ctx, pythonRoadmap()); err != nil {
		t.Fatalf("save roadmap: %v", err)
	}

	before, err := courses.Progress(ctx, "u1", "python")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if before.Completed != 0 || before.Total != 2 || before.Percent != 0 {
		t.Fatalf("expected nothing done, got %+v", before)
	}

	completeQuiz(t, env, "u1", []int{0, 0, 1})

	after, err := courses.Progress(ctx, "u1", "python")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	python := after.Modules[0]
	if !python.Subskills[0].Completed || python.Subskills[0].QuizID != "python-basics" || python.Subskills[1].Completed {
		t.Fatalf("expected only the basics quiz done, got %+v", python.Subskills)
	}
	if python.Percent != 50 || after.Percent != 50 || after.Modules[1].Percent != 0 {
		t.Fatalf("unexpected percentages %+v", after)
	}
}

func TestCourseProgressErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	roadmaps := memory.NewRoadmapStore(map[string]domain.Roadmap{"python": pythonRoadmap()})

	courses := app.NewCourseService(roadmaps, store)
	if _, err := courses.Progress(ctx, "u1", "rust"); !errors.Is(err, domain.ErrRoadmapNotFound) {
		t.Fatalf("expected roadmap not found, got %v", err)
	}
	if _, err := courses.Progress(ctx, "", "python"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}

	broken := app.NewCourseService(roadmaps, unreadableResults{store})
	if _, err := broken.Progress(ctx, "u1", "python"); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSaveRoadmapValidates(t *testing.T) {
	ctx := context.Background()
	roadmaps := memory.NewRoadmapStore(nil)
	courses := app.NewCourseService(roadmaps, memory.NewProgressStore())

	invalid := domain.Roadmap{Name: "dup", Modules: []domain.RoadmapModule{
		{Name: "A", Subskills: []domain.Subskill{{Name: "x y"}, {Name: "X  Y"}}},
	}}
	if err := courses.SaveRoadmap(ctx, invalid); !errors.Is(err, domain.ErrInvalidRoadmap) {
		t.Fatalf("expected invalid roadmap, got %v", err)
	}
	if _, err := roadmaps.LoadRoadmap(ctx, "dup"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("invalid roadmap must not be stored, got %v", err)
	}
}

type unreadableResults struct {
	app.ProgressStore
}

func (unreadableResults) LoadQuizResult(context.Context, string, string) (domain.QuizResult, error) {
	return domain.QuizResult{}, domain.NewStorageError("load quiz result", errors.New("timeout"))
}
