package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-progress-service/internal/domain"
)

func TestNewWeeklyStatsOrder(t *testing.T) {
	stats := NewWeeklyStats()
	require.Len(t, stats.Days, 7)
	assert.Equal(t, "Mon", stats.Days[0].Day)
	assert.Equal(t, "Sun", stats.Days[6].Day)
	assert.Zero(t, TotalMinutes(stats))
}

func TestAddMinutes(t *testing.T) {
	stats := NewWeeklyStats()
	got, err := AddMinutes(stats, time.Wednesday, 15)
	require.NoError(t, err)
	got, err = AddMinutes(got, time.Wednesday, 5)
	require.NoError(t, err)
	got, err = AddMinutes(got, time.Sunday, 1)
	require.NoError(t, err)

	assert.Equal(t, 20, got.Days[2].Minutes)
	assert.Equal(t, 1, got.Days[6].Minutes)
	assert.Equal(t, 21, TotalMinutes(got))
	assert.Zero(t, TotalMinutes(stats), "input must not be mutated")
}

func TestAddMinutesRepairsPartialStats(t *testing.T) {
	partial := domain.WeeklyStats{Days: []domain.DayMinutes{{Day: "Fri", Minutes: 3}}}
	got, err := AddMinutes(partial, time.Monday, 2)
	require.NoError(t, err)
	require.Len(t, got.Days, 7)
	assert.Equal(t, 5, TotalMinutes(got))
}

func TestAddMinutesRejectsNegative(t *testing.T) {
	_, err := AddMinutes(NewWeeklyStats(), time.Monday, -1)
	assert.ErrorIs(t, err, domain.ErrNegativeMinutes)
}
