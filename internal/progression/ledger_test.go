package progression

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-progress-service/internal/domain"
)

var epoch = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func TestNewProgressDefaults(t *testing.T) {
	p := NewProgress(epoch)
	assert.Equal(t, domain.ProgressRecord{Level: 1, XP: 0, NextLevelXP: 1000, StreakDays: 0, LastUpdate: epoch}, p)
	assert.NoError(t, Validate(p))
}

func TestAddXPCascadesLevels(t *testing.T) {
	got, err := AddXP(NewProgress(epoch), 2500)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, 0, got.XP)
	assert.Equal(t, 2250, got.NextLevelXP)
	assert.Equal(t, epoch, got.LastUpdate)
}

func TestAddXP(t *testing.T) {
	tests := []struct {
		name      string
		in        domain.ProgressRecord
		amount    int
		wantLevel int
		wantXP    int
		wantNext  int
	}{
		{"below threshold", domain.ProgressRecord{Level: 1, XP: 100, NextLevelXP: 1000}, 850, 1, 950, 1000},
		{"exact threshold", domain.ProgressRecord{Level: 1, XP: 990, NextLevelXP: 1000}, 10, 2, 0, 1500},
		{"zero amount", domain.ProgressRecord{Level: 4, XP: 7, NextLevelXP: 3375}, 0, 4, 7, 3375},
		{"odd threshold rounds half up", domain.ProgressRecord{Level: 2, XP: 0, NextLevelXP: 15}, 15, 3, 0, 23},
		{"carry remainder", domain.ProgressRecord{Level: 1, XP: 500, NextLevelXP: 1000}, 1200, 2, 700, 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddXP(tt.in, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantXP, got.XP)
			assert.Equal(t, tt.wantNext, got.NextLevelXP)
		})
	}
}

func TestAddXPZeroIsIdentity(t *testing.T) {
	p := domain.ProgressRecord{Level: 5, XP: 321, NextLevelXP: 5063, StreakDays: 3, LastUpdate: epoch}
	got, err := AddXP(p, 0)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestAddXPRejectsNegative(t *testing.T) {
	p := NewProgress(epoch)
	got, err := AddXP(p, -1)
	assert.ErrorIs(t, err, domain.ErrNegativeXP)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, p, got)
}

func TestAddXPRejectsBrokenRecord(t *testing.T) {
	_, err := AddXP(domain.ProgressRecord{Level: 1, XP: 1000, NextLevelXP: 1000}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidProgress)
}

func TestAddXPKeepsInvariant(t *testing.T) {
	p := NewProgress(epoch)
	for i := 0; i < 500; i++ {
		var err error
		p, err = AddXP(p, (i*7919)%4000)
		require.NoError(t, err)
		require.NoError(t, Validate(p), "after step %d: %+v", i, p)
	}
	assert.Greater(t, p.Level, 1)
}

func TestAddXPRejectsOverflow(t *testing.T) {
	p := domain.ProgressRecord{Level: 1, XP: 10, NextLevelXP: 1000, LastUpdate: epoch}
	got, err := AddXP(p, math.MaxInt-5)
	assert.ErrorIs(t, err, domain.ErrXPOverflow)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, p, got)

	got, err = AddXP(p, math.MaxInt-10)
	require.NoError(t, err)
	assert.NoError(t, Validate(got))
}

func TestLevelsGained(t *testing.T) {
	before := NewProgress(epoch)
	after, err := AddXP(before, 2500)
	require.NoError(t, err)
	assert.Equal(t, 2, LevelsGained(before, after))
	assert.Equal(t, 0, LevelsGained(after, before))
}
