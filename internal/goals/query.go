package goals

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"drivefin/internal/core"
)

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortCreated  SortKey = "created"
	SortDeadline SortKey = "deadline"
	SortProgress SortKey = "progress"
	SortValue    SortKey = "value"
	SortTitle    SortKey = "title"
)

// Criteria restricts which goals Filter keeps. Empty fields impose no
// constraint.
type Criteria struct {
	Statuses   []core.GoalStatus
	Categories []core.GoalCategory
	Search     string
}

// Filter returns the goals matching every criterion, in input order.
// Search is a case-insensitive substring match on title or description.
func Filter(goals []core.Goal, c Criteria) []core.Goal {
	search := strings.ToLower(c.Search)
	out := make([]core.Goal, 0, len(goals))
	for _, g := range goals {
		if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, g.Status) {
			continue
		}
		if len(c.Categories) > 0 && !slices.Contains(c.Categories, g.Category) {
			continue
		}
		if search != "" {
			titleMatch := strings.Contains(strings.ToLower(g.Title), search)
			descMatch := strings.Contains(strings.ToLower(g.Description), search)
			if !titleMatch && !descMatch {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

// Sort returns a sorted copy of goals; the input slice is left untouched.
// Unknown keys fall back to SortCreated. Ties keep their input order.
func Sort(goals []core.Goal, by SortKey) []core.Goal {
	out := slices.Clone(goals)
	if out == nil {
		out = []core.Goal{}
	}

	var less func(a, b core.Goal) int
	switch by {
	case SortDeadline:
		less = func(a, b core.Goal) int { return a.Deadline.Compare(b.Deadline.Time) }
	case SortProgress:
		less = func(a, b core.Goal) int { return cmp.Compare(Progress(b), Progress(a)) }
	case SortValue:
		less = func(a, b core.Goal) int { return cmp.Compare(b.TargetValue, a.TargetValue) }
	case SortTitle:
		col := collate.New(language.BrazilianPortuguese)
		less = func(a, b core.Goal) int { return col.CompareString(a.Title, b.Title) }
	default:
		less = func(a, b core.Goal) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}

	slices.SortStableFunc(out, less)
	return out
}

// ParseSortKey maps a query value to a SortKey, defaulting to SortCreated.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDeadline, SortProgress, SortValue, SortTitle:
		return k
	}
	return SortCreated
}

// ParseStatuses keeps the recognised statuses among values. Each value may
// itself be a comma separated list.
func ParseStatuses(values ...string) []core.GoalStatus {
	var out []core.GoalStatus
	for _, v := range splitValues(values) {
		if s := core.GoalStatus(v); s.Valid() {
			out = append(out, s)
		}
	}
	return out
}

// ParseCategories keeps the recognised goal categories among values.
func ParseCategories(values ...string) []core.GoalCategory {
	var out []core.GoalCategory
	for _, v := range splitValues(values) {
		if c := core.GoalCategory(v); c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" && part != "all" {
				out = append(out, part)
			}
		}
	}
	return out
}
