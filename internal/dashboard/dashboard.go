// Package dashboard derives the summary figures shown on the home screen
// from an application state snapshot. Everything here is pure.
package dashboard

import (
	"cmp"
	"math"
	"slices"
	"time"

	"drivefin/internal/core"
	"drivefin/internal/goals"
	"drivefin/internal/store"
)

// RecentLimit is how many transactions Build lists as recent.
const RecentLimit = 5

type ProgressStatus string

const (
	OnTrack   ProgressStatus = "on_track"
	Completed ProgressStatus = "completed"
	Overdue   ProgressStatus = "overdue"
)

// Period is an inclusive range of calendar dates.
type Period struct {
	From core.Date `json:"from"`
	To   core.Date `json:"to"`
}

func (p Period) Contains(d core.Date) bool {
	return !d.Before(p.From.Time) && !d.After(p.To.Time)
}

type TransactionSummary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
	Count        int     `json:"count"`
	Period       Period  `json:"period"`
}

// PeriodStats are the driver figures for one period. Rides counts income
// entries; Hours sums finished sessions that started in the period.
type PeriodStats struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
	Rides   int     `json:"rides"`
	Hours   float64 `json:"hours"`
}

// Trends are percentage changes of this week against last week.
type Trends struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Rides   float64 `json:"rides"`
}

type GoalProgress struct {
	GoalID    string         `json:"goalId"`
	Title     string         `json:"title"`
	Progress  float64        `json:"progress"`
	Remaining float64        `json:"remaining"`
	DaysLeft  int            `json:"daysLeft"`
	Status    ProgressStatus `json:"status"`
}

type Stats struct {
	TransactionSummary TransactionSummary `json:"transactionSummary"`
	Today              PeriodStats        `json:"today"`
	Week               PeriodStats        `json:"week"`
	EarningsPerHour    float64            `json:"earningsPerHour"`
	Trends             Trends             `json:"trends"`
	Goals              goals.Statistics   `json:"goals"`
	GoalProgress       []GoalProgress     `json:"goalProgress"`
	RecentTransactions []core.Transaction `json:"recentTransactions"`
	ActiveSessions     []core.Session     `json:"activeSessions"`
}

// Summarize totals the transactions dated within [from, to].
func Summarize(txs []core.Transaction, from, to core.Date) TransactionSummary {
	p := Period{From: from, To: to}
	s := TransactionSummary{Period: p}
	for _, t := range txs {
		if !p.Contains(t.Date) {
			continue
		}
		s.Count++
		switch t.Kind {
		case core.Income:
			s.TotalIncome += t.Amount
		case core.Expense:
			s.TotalExpense += t.Amount
		}
	}
	s.TotalIncome = roundCents(s.TotalIncome)
	s.TotalExpense = roundCents(s.TotalExpense)
	s.Balance = roundCents(s.TotalIncome - s.TotalExpense)
	return s
}

// Build computes the dashboard for the state at now.
func Build(s store.AppState, now time.Time) Stats {
	today := core.DateOf(now)
	monthStart := core.NewDate(today.Year(), int(today.Month()), 1)
	monthEnd := core.DateOf(monthStart.AddDate(0, 1, -1))

	week := weekOf(today)
	lastWeek := Period{
		From: core.DateOf(week.From.AddDate(0, 0, -7)),
		To:   core.DateOf(week.From.AddDate(0, 0, -1)),
	}

	todayStats := periodStats(s, Period{From: today, To: today})
	weekStats := periodStats(s, week)
	lastWeekStats := periodStats(s, lastWeek)

	var perHour float64
	if todayStats.Hours > 0 {
		perHour = roundCents(todayStats.Income / todayStats.Hours)
	}

	return Stats{
		TransactionSummary: Summarize(s.Transactions, monthStart, monthEnd),
		Today:              todayStats,
		Week:               weekStats,
		EarningsPerHour:    perHour,
		Trends: Trends{
			Income:  change(weekStats.Income, lastWeekStats.Income),
			Expense: change(weekStats.Expense, lastWeekStats.Expense),
			Rides:   change(float64(weekStats.Rides), float64(lastWeekStats.Rides)),
		},
		Goals:              goals.CalculateStatistics(s.Goals, now),
		GoalProgress:       Progress(s.Goals, now),
		RecentTransactions: Recent(s.Transactions, RecentLimit),
		ActiveSessions:     ActiveSessions(s.Sessions),
	}
}

// Progress reports every goal except paused ones.
func Progress(gs []core.Goal, now time.Time) []GoalProgress {
	out := make([]GoalProgress, 0, len(gs))
	for _, g := range gs {
		if g.Status == core.GoalPaused {
			continue
		}
		p := goals.Progress(g)
		status := OnTrack
		switch {
		case g.Status == core.GoalCompleted || p >= 100:
			status = Completed
		case goals.IsExpired(g, now):
			status = Overdue
		}
		out = append(out, GoalProgress{
			GoalID:    g.ID,
			Title:     g.Title,
			Progress:  p,
			Remaining: math.Max(g.TargetValue-g.CurrentValue, 0),
			DaysLeft:  goals.DaysUntilDeadline(g, now),
			Status:    status,
		})
	}
	return out
}

// Recent returns up to n transactions, newest date first.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []core.Transaction{}
	}
	return out
}

func ActiveSessions(ss []core.Session) []core.Session {
	out := []core.Session{}
	for _, s := range ss {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// CategoryTotal is the sum of one category's transactions.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// ByCategory totals transactions of kind per category, largest first.
func ByCategory(txs []core.Transaction, kind core.EntryKind) []CategoryTotal {
	idx := map[string]int{}
	out := []CategoryTotal{}
	for _, t := range txs {
		if t.Kind != kind {
			continue
		}
		i, ok := idx[t.Category]
		if !ok {
			i = len(out)
			idx[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category})
		}
		out[i].Total += t.Amount
		out[i].Count++
	}
	for i := range out {
		out[i].Total = roundCents(out[i].Total)
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

func periodStats(s store.AppState, p Period) PeriodStats {
	var ps PeriodStats
	for _, t := range s.Transactions {
		if !p.Contains(t.Date) {
			continue
		}
		switch t.Kind {
		case core.Income:
			ps.Income += t.Amount
			ps.Rides++
		case core.Expense:
			ps.Expense += t.Amount
		}
	}
	var minutes int
	for _, sess := range s.Sessions {
		if sess.Active || sess.DurationMinutes == nil {
			continue
		}
		if p.Contains(core.DateOf(sess.StartedAt)) {
			minutes += *sess.DurationMinutes
		}
	}
	ps.Income = roundCents(ps.Income)
	ps.Expense = roundCents(ps.Expense)
	ps.Profit = roundCents(ps.Income - ps.Expense)
	ps.Hours = roundCents(float64(minutes) / 60)
	return ps
}

// weekOf returns Monday through d.
func weekOf(d core.Date) Period {
	offset := (int(d.Weekday()) + 6) % 7
	return Period{From: core.DateOf(d.AddDate(0, 0, -offset)), To: d}
}

func change(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
