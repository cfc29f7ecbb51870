// Package goals holds the savings-goal rules: progress, deadlines, aggregate
// statistics and the filtered/sorted views the dashboard shows.
//
// Every function here is pure. Callers pass the reference time explicitly so
// the same inputs always produce the same output.
package goals

import (
	"math"
	"time"

	"drivefin/internal/core"
)

const day = 24 * time.Hour

// CalculateProgress returns current as a percentage of target, clamped to
// 100. A non-positive target yields 0 instead of dividing by zero.
func CalculateProgress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(current/target*100, 100)
}

// Progress is CalculateProgress applied to a goal.
func Progress(g core.Goal) float64 {
	return CalculateProgress(g.CurrentValue, g.TargetValue)
}

// IsExpired reports whether an active goal's deadline is before now.
// Completed and paused goals never expire.
func IsExpired(g core.Goal, now time.Time) bool {
	if g.Status != core.GoalActive {
		return false
	}
	return g.Deadline.Before(now)
}

// DaysUntilDeadline returns the number of days left, rounded up. Past
// deadlines give zero or negative values.
func DaysUntilDeadline(g core.Goal, now time.Time) int {
	diff := g.Deadline.Sub(now)
	return int(math.Ceil(float64(diff) / float64(day)))
}

// ProgressColor maps a progress percentage to the palette name used by the
// dashboard cards.
func ProgressColor(progress float64) string {
	switch {
	case progress >= 100:
		return "success"
	case progress >= 75:
		return "info"
	case progress >= 50:
		return "primary"
	case progress >= 25:
		return "warning"
	default:
		return "error"
	}
}

// NewEmpty returns the template for a new goal: blank text, zero values,
// category other, status active and a deadline one year after now.
// ID and timestamps are left for the caller to fill in.
func NewEmpty(now time.Time) core.Goal {
	return core.Goal{
		Title:        "",
		Description:  "",
		TargetValue:  0,
		CurrentValue: 0,
		Deadline:     core.DateOf(now.Add(365 * day)),
		Category:     core.CategoryOther,
		Status:       core.GoalActive,
	}
}
