package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"learning-progress-service/internal/domain"
)

// AttemptStore is a Redis implementation of app.AttemptRepository. Each attempt is a JSON
// snapshot whose TTL is refreshed on every save, so idle attempts eventually vanish while
// active ones survive restarts and can move between instances.
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: ttl}
}

func (s *AttemptStore) Save(ctx context.Context, state domain.QuizAttemptState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return domain.NewStorageError("encode attempt", err)
	}
	return domain.NewStorageError("save attempt", s.client.Set(ctx, s.key(state.ID), raw, s.ttl).Err())
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (domain.QuizAttemptState, error) {
	raw, err := s.client.Get(ctx, s.key(attemptID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuizAttemptState{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.QuizAttemptState{}, domain.NewStorageError("load attempt", err)
	}
	var state domain.QuizAttemptState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.QuizAttemptState{}, domain.NewStorageError("decode attempt", err)
	}
	return state, nil
}

func (s *AttemptStore) Delete(ctx context.Context, attemptID string) error {
	return domain.NewStorageError("delete attempt", s.client.Del(ctx, s.key(attemptID)).Err())
}

func (s *AttemptStore) key(attemptID string) string {
	return "quiz:attempt:" + attemptID
}
