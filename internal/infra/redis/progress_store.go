package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"learning-progress-service/internal/domain"
)

// ProgressStore keeps per-user records as JSON blobs:
//
//	progress:{userID}          -> ProgressRecord
//	progress:{userID}:results  -> hash quizID -> QuizResult
//	progress:{userID}:stats    -> WeeklyStats
//
// Records never expire. It implements app.ProgressStore and app.StatsStore.
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) LoadProgress(ctx context.Context, userID string) (domain.ProgressRecord, error) {
	var rec domain.ProgressRecord
	err := s.getJSON(ctx, "load progress", progressKey(userID), &rec, domain.ErrProgressNotFound)
	return rec, err
}

func (s *ProgressStore) SaveProgress(ctx context.Context, userID string, rec domain.ProgressRecord) error {
	return s.setJSON(ctx, "save progress", progressKey(userID), rec)
}

func (s *ProgressStore) LoadQuizResult(ctx context.Context, userID, quizID string) (domain.QuizResult, error) {
	raw, err := s.client.HGet(ctx, resultsKey(userID), quizID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, domain.NewStorageError("load quiz result", err)
	}
	var result domain.QuizResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.QuizResult{}, domain.NewStorageError("decode quiz result", err)
	}
	return result, nil
}

func (s *ProgressStore) SaveQuizResult(ctx context.Context, userID, quizID string, result domain.QuizResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return domain.NewStorageError("encode quiz result", err)
	}
	return domain.NewStorageError("save quiz result", s.client.HSet(ctx, resultsKey(userID), quizID, raw).Err())
}

func (s *ProgressStore) LoadStats(ctx context.Context, userID string) (domain.WeeklyStats, error) {
	var stats domain.WeeklyStats
	err := s.getJSON(ctx, "load stats", statsKey(userID), &stats, domain.ErrStatsNotFound)
	return stats, err
}

func (s *ProgressStore) SaveStats(ctx context.Context, userID string, stats domain.WeeklyStats) error {
	return s.setJSON(ctx, "save stats", statsKey(userID), stats)
}

func (s *ProgressStore) getJSON(ctx context.Context, op, key string, dst any, notFound error) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return notFound
	}
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.NewStorageError(op, err)
	}
	return nil
}

func (s *ProgressStore) setJSON(ctx context.Context, op, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	return domain.NewStorageError(op, s.client.Set(ctx, key, raw, 0).Err())
}

func progressKey(userID string) string { return "progress:" + userID }
func resultsKey(userID string) string  { return "progress:" + userID + ":results" }
func statsKey(userID string) string    { return "progress:" + userID + ":stats" }
