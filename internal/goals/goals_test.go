package goals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"drivefin/internal/core"
)

var now = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name            string
		current, target float64
		want            float64
	}{
		{"half way", 500, 1000, 50},
		{"zero target", 500, 0, 0},
		{"negative target", 500, -10, 0},
		{"exactly reached", 1000, 1000, 100},
		{"overshoot clamps", 1500, 1000, 100},
		{"nothing saved", 0, 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateProgress(tt.current, tt.target))
		})
	}
}

func TestCalculateProgressBounds(t *testing.T) {
	for _, target := range []float64{0.01, 1, 3, 999.99, 1e6} {
		for _, current := range []float64{0, 0.5, 1, 2.5, 1000, 1e7} {
			p := CalculateProgress(current, target)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
			if current >= target {
				assert.Equal(t, 100.0, p)
			}
		}
	}
}

func TestIsExpired(t *testing.T) {
	past := core.NewDate(2025, 6, 1)
	future := core.NewDate(2025, 7, 1)

	assert.True(t, IsExpired(core.Goal{Status: core.GoalActive, Deadline: past}, now))
	assert.False(t, IsExpired(core.Goal{Status: core.GoalActive, Deadline: future}, now))
	assert.False(t, IsExpired(core.Goal{Status: core.GoalCompleted, Deadline: past}, now))
	assert.False(t, IsExpired(core.Goal{Status: core.GoalPaused, Deadline: past}, now))
}

func TestDaysUntilDeadline(t *testing.T) {
	tests := []struct {
		deadline core.Date
		want     int
	}{
		{core.NewDate(2025, 6, 16), 1},  // 13.5h ahead rounds up
		{core.NewDate(2025, 6, 25), 10}, // 9d13.5h ahead
		{core.NewDate(2025, 6, 15), 0},  // earlier today
		{core.NewDate(2025, 6, 10), -5}, // 5d10.5h ago
	}
	for _, tt := range tests {
		g := core.Goal{Deadline: tt.deadline}
		assert.Equal(t, tt.want, DaysUntilDeadline(g, now), tt.deadline.String())
	}
}

func TestProgressColor(t *testing.T) {
	assert.Equal(t, "success", ProgressColor(100))
	assert.Equal(t, "info", ProgressColor(80))
	assert.Equal(t, "primary", ProgressColor(50))
	assert.Equal(t, "warning", ProgressColor(25))
	assert.Equal(t, "error", ProgressColor(10))
}

func TestNewEmpty(t *testing.T) {
	g := NewEmpty(now)
	assert.Equal(t, "", g.Title)
	assert.Equal(t, "", g.Description)
	assert.Zero(t, g.TargetValue)
	assert.Zero(t, g.CurrentValue)
	assert.Equal(t, core.CategoryOther, g.Category)
	assert.Equal(t, core.GoalActive, g.Status)
	assert.Equal(t, "2026-06-15", g.Deadline.String())
	assert.Empty(t, g.ID)
	assert.True(t, g.CreatedAt.IsZero())
}
