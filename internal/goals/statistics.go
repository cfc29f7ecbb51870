package goals

import (
	"time"

	"drivefin/internal/core"
)

// nearDeadlineWindow is how far ahead an active goal counts as near its deadline.
const nearDeadlineWindow = 30 * day

// Statistics summarises a set of goals.
//
// Expired is carved out of Active: an active goal past its deadline is
// counted once in Expired and removed from Active, so Active+Expired equals
// the number of active-status goals. AverageProgress is still taken over all
// active-status goals, expired ones included.
type Statistics struct {
	Total           int     `json:"total"`
	Active          int     `json:"active"`
	Completed       int     `json:"completed"`
	Paused          int     `json:"paused"`
	Expired         int     `json:"expired"`
	NearDeadline    int     `json:"nearDeadline"`
	TotalValue      float64 `json:"totalValue"`
	AchievedValue   float64 `json:"achievedValue"`
	CompletionRate  float64 `json:"completionRate"`
	AverageProgress float64 `json:"averageProgress"`
}

// CalculateStatistics aggregates goals as of now. An empty input returns the
// zero Statistics.
func CalculateStatistics(goals []core.Goal, now time.Time) Statistics {
	stats := Statistics{Total: len(goals)}
	if len(goals) == 0 {
		return stats
	}

	horizon := now.Add(nearDeadlineWindow)
	var totalProgress float64
	activeCount := 0

	for _, g := range goals {
		switch g.Status {
		case core.GoalActive:
			stats.Active++
			activeCount++
			totalProgress += Progress(g)
		case core.GoalCompleted:
			stats.Completed++
		case core.GoalPaused:
			stats.Paused++
		}

		if g.Status == core.GoalActive && g.Deadline.Before(now) {
			stats.Expired++
			stats.Active--
		}

		if g.Status == core.GoalActive && !g.Deadline.After(horizon) && !g.Deadline.Before(now) {
			stats.NearDeadline++
		}

		stats.TotalValue += g.TargetValue
		stats.AchievedValue += g.CurrentValue
	}

	stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	if activeCount > 0 {
		stats.AverageProgress = totalProgress / float64(activeCount)
	}
	return stats
}
