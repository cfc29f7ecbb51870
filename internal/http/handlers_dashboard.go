package http

import (
	"fmt"
	"net/http"
	"strings"

	"drivefin/internal/core"
	"drivefin/internal/dashboard"
	"drivefin/internal/log"
	"drivefin/internal/store"
)

// handleDashboardStats serves dashboard.Build for the current state. The
// result is cached per store version and UTC hour, so any dispatch or a
// new hour produces a fresh figure. Fields that move with the clock
// (goal DaysLeft and overdue status, hours of an active session) may lag
// by up to an hour.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	key := fmt.Sprintf("%d:%s", s.store.Version(), now.UTC().Format("2006-01-02T15"))
	if stats, ok := s.dashCache.Get(key); ok {
		log.FromContext(r.Context()).WithComponent(log.ComponentCache).DebugContext(r.Context(), "Dashboard cache hit", "key", key)
		OK(stats).Write(w)
		return
	}
	stats := dashboard.Build(s.store.State(), now)
	s.dashCache.Set(key, stats)
	OK(stats).Write(w)
}

// handleDashboardCategories totals expense (default) or income per category.
func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	kind := core.EntryKind(strings.ToLower(r.URL.Query().Get("kind")))
	if kind == "" {
		kind = core.Expense
	}
	if !kind.Valid() {
		ValidationError("kind must be income or expense", nil).Write(w)
		return
	}
	OK(map[string]any{
		"kind":       kind,
		"categories": dashboard.ByCategory(s.store.State().Transactions, kind),
	}).Write(w)
}

type stateResponse struct {
	Version uint64         `json:"version"`
	State   store.AppState `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	OK(stateResponse{Version: s.store.Version(), State: s.store.State()}).Write(w)
}

// clientActions are the actions a client may dispatch directly. Records
// and authentication change only through their own routes so storage and
// the store stay in step.
var clientActions = map[store.ActionType]bool{
	store.TypeSetLoading:    true,
	store.TypeSetError:      true,
	store.TypeClearErrors:   true,
	store.TypeSetTheme:      true,
	store.TypeToggleSidebar: true,
	store.TypeSetSidebar:    true,
}

// handleDispatch decodes one {"type", "payload"} action and dispatches it.
// Unknown types are accepted and leave the state unchanged.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := store.DecodeAction(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, unknown := a.(store.Unknown); !unknown && !clientActions[a.Type()] {
		ErrorResponse(http.StatusForbidden, CodeForbidden, fmt.Sprintf("action %s cannot be dispatched by clients", a.Type())).Write(w)
		return
	}
	state := s.store.Dispatch(a)
	log.FromContext(r.Context()).WithComponent(log.ComponentStore).DebugContext(r.Context(), "Client action dispatched",
		log.NewFields().WithAction(string(a.Type()), s.store.Version()).ToSlice()...)
	OK(stateResponse{Version: s.store.Version(), State: state}).Write(w)
}
