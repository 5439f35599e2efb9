// Package timegate holds the deadline arithmetic for chests. Everything here is a
// pure function of its arguments.
package timegate

import (
	"math"
	"time"
)

// Day is the production length of one chest duration unit.
const Day = 24 * time.Hour

// IsUnlockable reports whether the deadline has been reached.
func IsUnlockable(now, unlockAt time.Time) bool {
	return !now.Before(unlockAt)
}

// Remaining returns the whole units left until unlockAt, rounded up, never negative.
// A non-positive unit falls back to Day.
func Remaining(now, unlockAt time.Time, unit time.Duration) int {
	if unit <= 0 {
		unit = Day
	}
	diff := unlockAt.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(float64(diff) / float64(unit)))
}

// UnlockAt returns the deadline for a chest started at start that lasts n units.
func UnlockAt(start time.Time, n int, unit time.Duration) time.Time {
	if unit <= 0 {
		unit = Day
	}
	return start.Add(time.Duration(n) * unit)
}
