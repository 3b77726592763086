package memory

import (
	"context"
	"slices"
	"sync"

	"learning-progress-service/internal/domain"
)

// ProgressStore keeps progress records, quiz results and learning stats in process memory.
// It implements app.ProgressStore and app.StatsStore.
type ProgressStore struct {
	mu       sync.RWMutex
	progress map[string]domain.ProgressRecord
	results  map[resultKey]domain.QuizResult
	stats    map[string]domain.WeeklyStats
}

type resultKey struct {
	userID string
	quizID string
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		progress: make(map[string]domain.ProgressRecord),
		results:  make(map[resultKey]domain.QuizResult),
		stats:    make(map[string]domain.WeeklyStats),
	}
}

func (s *ProgressStore) LoadProgress(_ context.Context, userID string) (domain.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.progress[userID]
	if !ok {
		return domain.ProgressRecord{}, domain.ErrProgressNotFound
	}
	return rec, nil
}

func (s *ProgressStore) SaveProgress(_ context.Context, userID string, rec domain.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[userID] = rec
	return nil
}

func (s *ProgressStore) LoadQuizResult(_ context.Context, userID, quizID string) (domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[resultKey{userID, quizID}]
	if !ok {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	result.PerQuestion = slices.Clone(result.PerQuestion)
	return result, nil
}

func (s *ProgressStore) SaveQuizResult(_ context.Context, userID, quizID string, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.PerQuestion = slices.Clone(result.PerQuestion)
	s.results[resultKey{userID, quizID}] = result
	return nil
}

func (s *ProgressStore) LoadStats(_ context.Context, userID string) (domain.WeeklyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[userID]
	if !ok {
		return domain.WeeklyStats{}, domain.ErrStatsNotFound
	}
	return domain.WeeklyStats{Days: slices.Clone(stats.Days)}, nil
}

func (s *ProgressStore) SaveStats(_ context.Context, userID string, stats domain.WeeklyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[userID] = domain.WeeklyStats{Days: slices.Clone(stats.Days)}
	return nil
}
