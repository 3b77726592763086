package memory

import (
	"context"
	"sync"

	"learning-progress-service/internal/domain"
)

// RoadmapStore keeps roadmaps in process memory. It implements app.RoadmapStore.
type RoadmapStore struct {
	mu       sync.RWMutex
	roadmaps map[string]domain.Roadmap
}

// NewRoadmapStore seeds the store with initial, which may be nil.
func NewRoadmapStore(initial map[string]domain.Roadmap) *RoadmapStore {
	s := &RoadmapStore{roadmaps: make(map[string]domain.Roadmap, len(initial))}
	for name, r := range initial {
		s.roadmaps[name] = cloneRoadmap(r)
	}
	return s
}

func (s *RoadmapStore) LoadRoadmap(_ context.Context, name string) (domain.Roadmap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roadmaps[name]
	if !ok {
		return domain.Roadmap{}, domain.ErrRoadmapNotFound
	}
	return cloneRoadmap(r), nil
}

func (s *RoadmapStore) SaveRoadmap(_ context.Context, r domain.Roadmap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roadmaps[r.Name] = cloneRoadmap(r)
	return nil
}

func cloneRoadmap(r domain.Roadmap) domain.Roadmap {
	modules := make([]domain.RoadmapModule, len(r.Modules))
	for i, m := range r.Modules {
		m.Subskills = append([]domain.Subskill(nil), m.Subskills...)
		modules[i] = m
	}
	r.Modules = modules
	return r
}
