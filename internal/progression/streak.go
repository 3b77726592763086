package progression

import (
	"time"

	"learning-progress-service/internal/domain"
)

// StreakTracker evaluates daily streaks with day boundaries taken in Location.
// A nil Location means UTC.
type StreakTracker struct {
	Location *time.Location
}

// NewStreakTracker loads the named IANA zone. An empty name selects UTC.
func NewStreakTracker(zone string) (StreakTracker, error) {
	if zone == "" {
		return StreakTracker{Location: time.UTC}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return StreakTracker{}, err
	}
	return StreakTracker{Location: loc}, nil
}

// EvaluateStreak applies the streak rule using UTC calendar days.
func EvaluateStreak(p domain.ProgressRecord, now time.Time) domain.ProgressRecord {
	return StreakTracker{}.Evaluate(p, now)
}

// Evaluate continues, resets or leaves the streak depending on the calendar days between
// p.LastUpdate and now. LastUpdate only moves when a day boundary was crossed.
func (s StreakTracker) Evaluate(p domain.ProgressRecord, now time.Time) domain.ProgressRecord {
	days := s.DaysBetween(p.LastUpdate, now)
	switch {
	case days <= 0:
		// Same day, or a clock that went backwards: nothing to do.
		return p
	case days == 1:
		p.StreakDays++
	default:
		p.StreakDays = 1
	}
	p.LastUpdate = now
	return p
}

// DaysBetween counts calendar-day boundaries from a to b in the tracker's zone.
func (s StreakTracker) DaysBetween(a, b time.Time) int {
	loc := s.location()
	return int(civilDay(b.In(loc)).Sub(civilDay(a.In(loc))).Hours() / 24)
}

func (s StreakTracker) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// civilDay maps t to midnight UTC of its calendar date so DST shifts cannot skew the day count.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Weekday reports t's day of week in the tracker's zone.
func (s StreakTracker) Weekday(t time.Time) time.Weekday {
	return t.In(s.location()).Weekday()
}
