package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"learning-progress-service/internal/domain"
)

// RoadmapStore keeps each roadmap as a JSON blob under roadmap:{name}, without expiry.
// It implements app.RoadmapStore.
type RoadmapStore struct {
	client *redis.Client
}

func NewRoadmapStore(client *redis.Client) *RoadmapStore {
	return &RoadmapStore{client: client}
}

func (s *RoadmapStore) LoadRoadmap(ctx context.Context, name string) (domain.Roadmap, error) {
	raw, err := s.client.Get(ctx, roadmapKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Roadmap{}, domain.ErrRoadmapNotFound
	}
	if err != nil {
		return domain.Roadmap{}, domain.NewStorageError("load roadmap", err)
	}
	var r domain.Roadmap
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.Roadmap{}, domain.NewStorageError("decode roadmap", err)
	}
	return r, nil
}

func (s *RoadmapStore) SaveRoadmap(ctx context.Context, r domain.Roadmap) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return domain.NewStorageError("encode roadmap", err)
	}
	return domain.NewStorageError("save roadmap", s.client.Set(ctx, roadmapKey(r.Name), raw, 0).Err())
}

func roadmapKey(name string) string { return "roadmap:" + name }
