package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"learning-progress-service/internal/content"
	"learning-progress-service/internal/course"
	"learning-progress-service/internal/domain"
)

// resultLookups bounds the concurrent quiz result reads of one progress request.
const resultLookups = 8

// CourseService reports roadmap completion. A subskill counts as done once the user has a
// stored result for its quiz; nothing else is persisted per user.
type CourseService struct {
	roadmaps RoadmapStore
	results  ProgressStore
	runtime
}

func NewCourseService(roadmaps RoadmapStore, results ProgressStore, opts ...Option) *CourseService {
	return &CourseService{roadmaps: roadmaps, results: results, runtime: newRuntime(opts)}
}

// SaveRoadmap validates and stores a roadmap, replacing any roadmap of the same name.
func (s *CourseService) SaveRoadmap(ctx context.Context, roadmap domain.Roadmap) error {
	if err := content.ValidateRoadmap(roadmap); err != nil {
		return err
	}
	if err := s.roadmaps.SaveRoadmap(ctx, roadmap); err != nil {
		s.metrics.StorageFailed("save roadmap")
		return err
	}
	return nil
}

// Progress computes the user's completion of the named roadmap.
func (s *CourseService) Progress(ctx context.Context, userID, name string) (domain.RoadmapProgress, error) {
	if userID == "" {
		return domain.RoadmapProgress{}, domain.ErrMissingUser
	}
	roadmap, err := s.roadmaps.LoadRoadmap(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.metrics.StorageFailed("load roadmap")
		}
		return domain.RoadmapProgress{}, err
	}

	var mu sync.Mutex
	completed := make(map[string]bool)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resultLookups)
	for _, quizID := range course.QuizIDs(roadmap) {
		quizID := quizID
		g.Go(func() error {
			_, err := s.results.LoadQuizResult(gctx, userID, quizID)
			switch {
			case err == nil:
				mu.Lock()
				completed[quizID] = true
				mu.Unlock()
				return nil
			case errors.Is(err, domain.ErrNotFound):
				return nil
			default:
				s.metrics.StorageFailed("load quiz result")
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return domain.RoadmapProgress{}, err
	}

	out := course.Progress(roadmap, completed)
	s.log.Debug("roadmap progress", zap.String("user", userID), zap.String("roadmap", name), zap.Int("percent", out.Percent))
	return out, nil
}
