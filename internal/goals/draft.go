package goals

import (
	"sort"
	"strings"

	"drivefin/internal/core"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// ValidateDraft applies the goal form rules. Unlike core.Goal.Validate it
// rejects deadlines in the past and reports every failing field at once.
// The result is nil when the draft is acceptable.
func ValidateDraft(g core.Goal, today core.Date) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(g.Title) == "" {
		errs["title"] = "title is required"
	}
	if g.TargetValue <= 0 {
		errs["targetValue"] = "target value must be greater than zero"
	}
	if g.CurrentValue < 0 {
		errs["currentValue"] = "current value cannot be negative"
	}
	if g.CurrentValue > g.TargetValue {
		errs["currentValue"] = "current value cannot exceed the target"
	}
	if g.Deadline.IsZero() {
		errs["deadline"] = "deadline is required"
	} else if g.Deadline.Before(today.Time) {
		errs["deadline"] = "deadline cannot be in the past"
	}
	if g.Category != "" && !g.Category.Valid() {
		errs["category"] = "unknown category"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
