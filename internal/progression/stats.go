package progression

import (
	"time"

	"learning-progress-service/internal/domain"
)

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// NewWeeklyStats returns zeroed minutes for Mon..Sun.
func NewWeeklyStats() domain.WeeklyStats {
	days := make([]domain.DayMinutes, 0, len(weekOrder))
	for _, wd := range weekOrder {
		days = append(days, domain.DayMinutes{Day: dayLabel(wd)})
	}
	return domain.WeeklyStats{Days: days}
}

// AddMinutes credits minutes to the given weekday. The input is left untouched.
func AddMinutes(stats domain.WeeklyStats, day time.Weekday, minutes int) (domain.WeeklyStats, error) {
	if minutes < 0 {
		return stats, domain.ErrNegativeMinutes
	}
	out := normalize(stats)
	label := dayLabel(day)
	for i := range out.Days {
		if out.Days[i].Day == label {
			out.Days[i].Minutes += minutes
		}
	}
	return out, nil
}

// TotalMinutes sums the week.
func TotalMinutes(stats domain.WeeklyStats) int {
	total := 0
	for _, d := range stats.Days {
		total += d.Minutes
	}
	return total
}

// normalize copies stats into the canonical seven-day layout, keeping known minutes.
func normalize(stats domain.WeeklyStats) domain.WeeklyStats {
	out := NewWeeklyStats()
	for _, d := range stats.Days {
		for i := range out.Days {
			if out.Days[i].Day == d.Day {
				out.Days[i].Minutes = d.Minutes
			}
		}
	}
	return out
}

// dayLabel returns the short English weekday name (Mon, Tue, ...).
func dayLabel(wd time.Weekday) string {
	return wd.String()[:3]
}
