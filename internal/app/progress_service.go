package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"learning-progress-service/internal/domain"
	"learning-progress-service/internal/progression"
)

// ProgressService owns one user's progress record per call: it loads it, runs the pure
// ledger/streak rules and persists the outcome only after they succeed. A failed call can be
// retried from scratch.
type ProgressService struct {
	store ProgressStore
	stats StatsStore
	runtime
}

// XPAward is the outcome of an XP grant.
type XPAward struct {
	Progress     domain.ProgressRecord `json:"progress"`
	LevelsGained int                   `json:"levelsGained"`
}

func NewProgressService(store ProgressStore, stats StatsStore, opts ...Option) *ProgressService {
	return &ProgressService{store: store, stats: stats, runtime: newRuntime(opts)}
}

// Progress returns the user's record, creating and saving the default one on first access.
func (s *ProgressService) Progress(ctx context.Context, userID string) (domain.ProgressRecord, error) {
	rec, created, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return domain.ProgressRecord{}, err
	}
	if created {
		if err := s.saveProgress(ctx, userID, rec); err != nil {
			return domain.ProgressRecord{}, err
		}
	}
	return rec, nil
}

// RecordActivity evaluates the daily streak for a qualifying activity happening now.
func (s *ProgressService) RecordActivity(ctx context.Context, userID string) (domain.ProgressRecord, error) {
	rec, created, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return domain.ProgressRecord{}, err
	}
	updated := s.streaks.Evaluate(rec, s.now())
	if !created && updated == rec {
		return rec, nil
	}
	if err := s.saveProgress(ctx, userID, updated); err != nil {
		return domain.ProgressRecord{}, err
	}
	if updated.StreakDays != rec.StreakDays {
		s.log.Debug("streak evaluated", zap.String("user", userID), zap.Int("streak_days", updated.StreakDays))
	}
	return updated, nil
}

// AwardXP grants amount XP, applying level-ups and the streak rule.
func (s *ProgressService) AwardXP(ctx context.Context, userID string, amount int) (XPAward, error) {
	if amount < 0 {
		return XPAward{}, domain.ErrNegativeXP
	}
	rec, _, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return XPAward{}, err
	}
	award, err := s.apply(rec, amount)
	if err != nil {
		return XPAward{}, err
	}
	if err := s.saveProgress(ctx, userID, award.Progress); err != nil {
		return XPAward{}, err
	}
	s.metrics.ObserveXP(amount, award.LevelsGained)
	s.logAward(userID, amount, award)
	return award, nil
}

// RecordMinutes credits learning time to today's weekday.
func (s *ProgressService) RecordMinutes(ctx context.Context, userID string, minutes int) (domain.WeeklyStats, error) {
	if minutes < 0 {
		return domain.WeeklyStats{}, domain.ErrNegativeMinutes
	}
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return domain.WeeklyStats{}, err
	}
	updated, err := progression.AddMinutes(stats, s.streaks.Weekday(s.now()), minutes)
	if err != nil {
		return domain.WeeklyStats{}, err
	}
	if err := s.stats.SaveStats(ctx, userID, updated); err != nil {
		s.metrics.StorageFailed("save stats")
		return domain.WeeklyStats{}, err
	}
	return updated, nil
}

// Stats returns the user's weekly minutes, zeroed when nothing was recorded yet.
func (s *ProgressService) Stats(ctx context.Context, userID string) (domain.WeeklyStats, error) {
	if userID == "" {
		return domain.WeeklyStats{}, domain.ErrMissingUser
	}
	stats, err := s.stats.LoadStats(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return progression.NewWeeklyStats(), nil
	}
	if err != nil {
		s.metrics.StorageFailed("load stats")
		return domain.WeeklyStats{}, err
	}
	return stats, nil
}

// apply is the pure part of an award: ledger first, then the streak.
func (s *ProgressService) apply(rec domain.ProgressRecord, amount int) (XPAward, error) {
	updated, err := progression.AddXP(rec, amount)
	if err != nil {
		return XPAward{}, err
	}
	updated = s.streaks.Evaluate(updated, s.now())
	return XPAward{Progress: updated, LevelsGained: progression.LevelsGained(rec, updated)}, nil
}

func (s *ProgressService) loadOrCreate(ctx context.Context, userID string) (domain.ProgressRecord, bool, error) {
	if userID == "" {
		return domain.ProgressRecord{}, false, domain.ErrMissingUser
	}
	rec, err := s.store.LoadProgress(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return progression.NewProgress(s.now()), true, nil
	}
	if err != nil {
		s.metrics.StorageFailed("load progress")
		return domain.ProgressRecord{}, false, err
	}
	return rec, false, nil
}

func (s *ProgressService) saveProgress(ctx context.Context, userID string, rec domain.ProgressRecord) error {
	if err := s.store.SaveProgress(ctx, userID, rec); err != nil {
		s.metrics.StorageFailed("save progress")
		s.log.Warn("save progress failed", zap.String("user", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *ProgressService) logAward(userID string, amount int, award XPAward) {
	fields := []zap.Field{
		zap.String("user", userID),
		zap.Int("xp", amount),
		zap.Int("level", award.Progress.Level),
	}
	if award.LevelsGained > 0 {
		s.log.Info("level up", append(fields, zap.Int("levels_gained", award.LevelsGained))...)
		return
	}
	s.log.Debug("xp awarded", fields...)
}
