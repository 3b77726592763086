// Package progression holds the pure leveling, streak and learning-time rules.
// Nothing here touches storage; callers persist the returned records.
package progression

import (
	"math"
	"time"

	"learning-progress-service/internal/domain"
)

const (
	// StartingLevel is the level of a freshly created record.
	StartingLevel = 1
	// StartingNextLevelXP is the threshold to leave level 1.
	StartingNextLevelXP = 1000
)

// NewProgress returns the default record for a user seen for the first time.
func NewProgress(now time.Time) domain.ProgressRecord {
	return domain.ProgressRecord{
		Level:       StartingLevel,
		XP:          0,
		NextLevelXP: StartingNextLevelXP,
		StreakDays:  0,
		LastUpdate:  now,
	}
}

// Validate reports whether p satisfies the record invariants.
func Validate(p domain.ProgressRecord) error {
	if p.Level < 1 || p.NextLevelXP <= 0 || p.XP < 0 || p.XP >= p.NextLevelXP || p.StreakDays < 0 {
		return domain.ErrInvalidProgress
	}
	return nil
}

// AddXP adds amount to p and applies every level-up it crosses.
func AddXP(p domain.ProgressRecord, amount int) (domain.ProgressRecord, error) {
	if amount < 0 {
		return p, domain.ErrNegativeXP
	}
	if err := Validate(p); err != nil {
		return p, err
	}

	// xp < NextLevelXP on entry, so only the remaining headroom matters for overflow.
	if amount > math.MaxInt-p.XP {
		return p, domain.ErrXPOverflow
	}
	p.XP += amount
	for p.XP >= p.NextLevelXP {
		p.XP -= p.NextLevelXP
		p.Level++
		p.NextLevelXP = nextThreshold(p.NextLevelXP)
	}
	return p, nil
}

// LevelsGained reports how many level-ups separate before and after.
func LevelsGained(before, after domain.ProgressRecord) int {
	if after.Level <= before.Level {
		return 0
	}
	return after.Level - before.Level
}

// nextThreshold is round(n * 1.5) with halves rounded up, saturating at MaxInt.
func nextThreshold(n int) int {
	if n > (math.MaxInt-1)/3 {
		return math.MaxInt
	}
	return (3*n + 1) / 2
}
