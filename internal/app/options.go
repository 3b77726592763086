package app

import (
	"time"

	"go.uber.org/zap"

	"learning-progress-service/internal/metrics"
	"learning-progress-service/internal/progression"
)

// Option configures a service.
type Option func(*runtime)

// runtime carries the collaborators shared by the services.
type runtime struct {
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Metrics
	streaks progression.StreakTracker
}

func newRuntime(opts []Option) runtime {
	rt := runtime{
		now:     time.Now,
		log:     zap.NewNop(),
		streaks: progression.StreakTracker{Location: time.UTC},
	}
	for _, opt := range opts {
		opt(&rt)
	}
	return rt
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(rt *runtime) { rt.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(rt *runtime) {
		if log != nil {
			rt.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(rt *runtime) { rt.metrics = m }
}

// WithStreakTracker pins the day boundary used for streaks and weekly stats.
func WithStreakTracker(t progression.StreakTracker) Option {
	return func(rt *runtime) { rt.streaks = t }
}
