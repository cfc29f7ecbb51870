package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func validGoal() Goal {
	return Goal{
		ID:           "g1",
		Title:        "Reserva",
		TargetValue:  1000,
		CurrentValue: 250,
		Deadline:     NewDate(2030, 1, 1),
		Category:     CategoryEmergency,
		Status:       GoalActive,
	}
}

func TestGoalValidate(t *testing.T) {
	if err := validGoal().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Goal)
		want   error
	}{
		{"blank title", func(g *Goal) { g.Title = "  " }, ErrEmptyTitle},
		{"zero target", func(g *Goal) { g.TargetValue = 0 }, ErrInvalidTarget},
		{"negative current", func(g *Goal) { g.CurrentValue = -1 }, ErrNegativeCurrent},
		{"current over target", func(g *Goal) { g.CurrentValue = 2000 }, ErrCurrentOverTarget},
		{"missing deadline", func(g *Goal) { g.Deadline = Date{} }, ErrMissingDate},
		{"unknown category", func(g *Goal) { g.Category = "cars" }, ErrInvalidCategory},
		{"unknown status", func(g *Goal) { g.Status = "archived" }, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := validGoal()
			tc.mutate(&g)
			if err := g.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:        Income,
		Amount:      120.5,
		Description: "Corridas Uber",
		Category:    "Uber",
		Date:        NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: "refund", Amount: 1, Description: "a", Category: "c", Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Amount: 0, Description: "a", Category: "c", Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Amount: 1, Description: "", Category: "c", Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Amount: 1, Description: "a", Category: "", Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Amount: 1, Description: "a", Category: "c"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSessionValidate(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	s := Session{Kind: SessionWork, StartedAt: start, EndedAt: &before}
	if err := s.Validate(); !errors.Is(err, ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}
	after := start.Add(time.Hour)
	s.EndedAt = &after
	if err := s.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestIsSubscribed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	cases := []struct {
		name string
		user User
		want bool
	}{
		{"paid", User{IsPaid: true}, true},
		{"trial running", User{TrialEndsAt: &future}, true},
		{"trial ends now", User{TrialEndsAt: &now}, true},
		{"trial over", User{TrialEndsAt: &past}, false},
		{"active plan", User{PlanStatus: "active"}, true},
		{"nothing", User{PlanStatus: "trial"}, false},
	}
	for _, tc := range cases {
		if got := IsSubscribed(tc.user, now); got != tc.want {
			t.Errorf("%s: IsSubscribed = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 12, 31)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-12-31"` {
		t.Fatalf("unexpected json %s", b)
	}

	var back Date
	if err := json.Unmarshal([]byte(`"2025-12-31T15:04:05Z"`), &back); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("expected %v, got %v", d, back)
	}

	if err := json.Unmarshal([]byte(`"31/12/2025"`), &back); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}
