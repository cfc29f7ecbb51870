package http

import (
	"net/http"
	"slices"

	"drivefin/internal/core"
	"drivefin/internal/goals"
	"drivefin/internal/log"
	"drivefin/internal/storage"
)

// goalInput is the editable part of a goal.
type goalInput struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	TargetValue  float64           `json:"targetValue"`
	CurrentValue float64           `json:"currentValue"`
	Deadline     core.Date         `json:"deadline"`
	Category     core.GoalCategory `json:"category"`
	Status       core.GoalStatus   `json:"status"`
}

func (in goalInput) goal(id string) core.Goal {
	return core.Goal{
		ID:           id,
		Title:        sanitizeInput(in.Title),
		Description:  sanitizeInput(in.Description),
		TargetValue:  in.TargetValue,
		CurrentValue: in.CurrentValue,
		Deadline:     in.Deadline,
		Category:     in.Category,
		Status:       in.Status,
	}
}

type goalView struct {
	core.Goal
	Progress      float64 `json:"progress"`
	ProgressColor string  `json:"progressColor"`
	DaysLeft      int     `json:"daysLeft"`
	Expired       bool    `json:"expired"`
}

func (s *Server) viewGoal(g core.Goal) goalView {
	now := s.now()
	p := goals.Progress(g)
	return goalView{
		Goal:          g,
		Progress:      p,
		ProgressColor: goals.ProgressColor(p),
		DaysLeft:      goals.DaysUntilDeadline(g, now),
		Expired:       goals.IsExpired(g, now),
	}
}

func (s *Server) findGoal(id string) (core.Goal, bool) {
	gs := s.store.State().Goals
	i := slices.IndexFunc(gs, func(g core.Goal) bool { return g.ID == id })
	if i < 0 {
		return core.Goal{}, false
	}
	return gs[i], true
}

// handleListGoals filters with status, category and q, then sorts by sort.
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	criteria, key := goalQuery(r.URL.Query())
	list := goals.Sort(goals.Filter(s.store.State().Goals, criteria), key)
	views := make([]goalView, 0, len(list))
	for _, g := range list {
		views = append(views, s.viewGoal(g))
	}
	OK(map[string]any{
		"goals": views,
		"total": len(views),
		"sort":  key,
	}).Write(w)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, ok := s.findGoal(r.PathValue("id"))
	if !ok {
		NotFoundError("goal not found").Write(w)
		return
	}
	OK(s.viewGoal(g)).Write(w)
}

func (s *Server) handleGoalStats(w http.ResponseWriter, r *http.Request) {
	OK(goals.CalculateStatistics(s.store.State().Goals, s.now())).Write(w)
}

func (s *Server) handleGoalTemplate(w http.ResponseWriter, r *http.Request) {
	OK(goals.NewEmpty(s.now())).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in goalInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	g := in.goal("")
	if errs := goals.ValidateDraft(g, core.DateOf(s.now())); errs != nil {
		writeError(w, r, errs)
		return
	}
	created, err := s.ledger.CreateGoal(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpCreate, storage.KindGoals, created.ID)
	Created(s.viewGoal(created)).Write(w)
}

// handleUpdateGoal replaces the editable fields. A deadline that has passed
// is accepted as long as it is unchanged.
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	prev, ok := s.findGoal(id)
	if !ok {
		NotFoundError("goal not found").Write(w)
		return
	}
	var in goalInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	g := in.goal(id)
	if g.Status == "" {
		g.Status = prev.Status
	}
	if g.Category == "" {
		g.Category = prev.Category
	}
	errs := goals.ValidateDraft(g, core.DateOf(s.now()))
	if errs != nil && g.Deadline.Equal(prev.Deadline.Time) && !g.Deadline.IsZero() {
		delete(errs, "deadline")
		if len(errs) == 0 {
			errs = nil
		}
	}
	if errs != nil {
		writeError(w, r, errs)
		return
	}
	updated, err := s.ledger.UpdateGoal(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpUpdate, storage.KindGoals, updated.ID)
	OK(s.viewGoal(updated)).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpDelete, storage.KindGoals, r.PathValue("id"))
	OK(nil).Message("deleted").Write(w)
}
