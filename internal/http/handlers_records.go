package http

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"drivefin/internal/core"
	"drivefin/internal/dashboard"
	"drivefin/internal/log"
	"drivefin/internal/storage"
)

type transactionInput struct {
	Kind        core.EntryKind `json:"kind"`
	Amount      float64        `json:"amount"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Date        core.Date      `json:"date"`
}

func (in transactionInput) transaction(id, userID string) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      userID,
		Kind:        in.Kind,
		Amount:      in.Amount,
		Description: sanitizeInput(in.Description),
		Category:    sanitizeInput(in.Category),
		Date:        in.Date,
	}
}

type categoryInput struct {
	Name   string         `json:"name"`
	Kind   core.EntryKind `json:"kind"`
	Color  string         `json:"color"`
	Icon   string         `json:"icon"`
	Active *bool          `json:"active"`
}

func (in categoryInput) category(id, userID string) core.Category {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return core.Category{
		ID:     id,
		UserID: userID,
		Name:   sanitizeInput(in.Name),
		Kind:   in.Kind,
		Color:  sanitizeInput(in.Color),
		Icon:   sanitizeInput(in.Icon),
		Active: active,
	}
}

type sessionInput struct {
	Kind        core.SessionKind `json:"kind"`
	Description string           `json:"description"`
	StartedAt   time.Time        `json:"startedAt"`
	EndedAt     *time.Time       `json:"endedAt"`
}

func (in sessionInput) session(id, userID string) core.Session {
	return core.Session{
		ID:          id,
		UserID:      userID,
		Kind:        in.Kind,
		Description: sanitizeInput(in.Description),
		StartedAt:   in.StartedAt,
		EndedAt:     in.EndedAt,
		Active:      in.EndedAt == nil,
	}
}

func userID(r *http.Request) string {
	u, _ := UserFromContext(r.Context())
	return u.ID
}

// recordChanged logs a successful write with the request's logger.
func recordChanged(r *http.Request, op string, kind storage.Kind, id string) {
	log.NewStructuredLogger(log.FromContext(r.Context())).LogRecordChanged(r.Context(), op, string(kind), id)
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	i := slices.IndexFunc(items, match)
	if i < 0 {
		var zero T
		return zero, false
	}
	return items[i], true
}

// Transactions

// handleListTransactions accepts kind, category, from and to (YYYY-MM-DD).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := dateRange(q.Get("from"), q.Get("to"))
	if err != nil {
		ValidationError(err.Error(), nil).Write(w)
		return
	}
	kind := core.EntryKind(strings.ToLower(q.Get("kind")))
	category := sanitizeInput(q.Get("category"))

	out := []core.Transaction{}
	for _, t := range s.store.State().Transactions {
		if kind != "" && t.Kind != kind {
			continue
		}
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		if !from.IsZero() && t.Date.Before(from.Time) {
			continue
		}
		if !to.IsZero() && t.Date.After(to.Time) {
			continue
		}
		out = append(out, t)
	}
	OK(map[string]any{"transactions": out, "total": len(out)}).Write(w)
}

// handleTransactionSummary totals a date range, defaulting to the current
// month.
func (s *Server) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := dateRange(q.Get("from"), q.Get("to"))
	if err != nil {
		ValidationError(err.Error(), nil).Write(w)
		return
	}
	today := core.DateOf(s.now())
	if from.IsZero() {
		from = core.NewDate(today.Year(), int(today.Month()), 1)
	}
	if to.IsZero() {
		to = core.DateOf(core.NewDate(today.Year(), int(today.Month()), 1).AddDate(0, 1, -1))
	}
	OK(dashboard.Summarize(s.store.State().Transactions, from, to)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, ok := find(s.store.State().Transactions, func(t core.Transaction) bool { return t.ID == id })
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	OK(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Date.IsZero() {
		in.Date = core.DateOf(s.now())
	}
	t, err := s.ledger.CreateTransaction(r.Context(), in.transaction("", userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpCreate, storage.KindTransactions, t.ID)
	Created(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.ledger.UpdateTransaction(r.Context(), in.transaction(r.PathValue("id"), userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpUpdate, storage.KindTransactions, t.ID)
	OK(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpDelete, storage.KindTransactions, r.PathValue("id"))
	OK(nil).Message("deleted").Write(w)
}

// Categories

// handleListCategories accepts kind and active=true|false.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := core.EntryKind(strings.ToLower(q.Get("kind")))
	active := strings.ToLower(q.Get("active"))

	out := []core.Category{}
	for _, c := range s.store.State().Categories {
		if kind != "" && c.Kind != kind {
			continue
		}
		if (active == "true" && !c.Active) || (active == "false" && c.Active) {
			continue
		}
		out = append(out, c)
	}
	OK(map[string]any{"categories": out, "total": len(out)}).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, ok := find(s.store.State().Categories, func(c core.Category) bool { return c.ID == id })
	if !ok {
		NotFoundError("category not found").Write(w)
		return
	}
	OK(c).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.ledger.CreateCategory(r.Context(), in.category("", userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpCreate, storage.KindCategories, c.ID)
	Created(c).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.ledger.UpdateCategory(r.Context(), in.category(r.PathValue("id"), userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpUpdate, storage.KindCategories, c.ID)
	OK(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpDelete, storage.KindCategories, r.PathValue("id"))
	OK(nil).Message("deleted").Write(w)
}

// Sessions

// handleListSessions accepts active=true|false.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	active := strings.ToLower(r.URL.Query().Get("active"))
	out := []core.Session{}
	for _, sess := range s.store.State().Sessions {
		if (active == "true" && !sess.Active) || (active == "false" && sess.Active) {
			continue
		}
		out = append(out, sess)
	}
	OK(map[string]any{"sessions": out, "total": len(out)}).Write(w)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := find(s.store.State().Sessions, func(x core.Session) bool { return x.ID == id })
	if !ok {
		NotFoundError("session not found").Write(w)
		return
	}
	OK(sess).Write(w)
}

// handleCreateSession records a session with explicit times, typically a
// finished one entered after the fact.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in sessionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.ledger.CreateSession(r.Context(), in.session("", userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpCreate, storage.KindSessions, sess.ID)
	Created(sess).Write(w)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var in sessionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.ledger.UpdateSession(r.Context(), in.session(r.PathValue("id"), userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpUpdate, storage.KindSessions, sess.ID)
	OK(sess).Write(w)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpDelete, storage.KindSessions, r.PathValue("id"))
	OK(nil).Message("deleted").Write(w)
}

type startSessionRequest struct {
	Kind        core.SessionKind `json:"kind"`
	Description string           `json:"description"`
}

// handleStartSession opens a session now. The body is optional.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var in startSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
	}
	sess, err := s.ledger.StartSession(r.Context(), in.Kind, sanitizeInput(in.Description))
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpCreate, storage.KindSessions, sess.ID)
	Created(sess).Write(w)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ledger.EndSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	recordChanged(r, log.OpUpdate, storage.KindSessions, sess.ID)
	OK(sess).Write(w)
}

func dateRange(from, to string) (core.Date, core.Date, error) {
	var f, t core.Date
	var err error
	if from = strings.TrimSpace(from); from != "" {
		if f, err = core.ParseDate(from); err != nil {
			return f, t, err
		}
	}
	if to = strings.TrimSpace(to); to != "" {
		if t, err = core.ParseDate(to); err != nil {
			return f, t, err
		}
	}
	return f, t, nil
}
