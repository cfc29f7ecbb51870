package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"drivefin/internal/amqp"
	"drivefin/internal/core"
	"drivefin/internal/storage"
	"drivefin/internal/store"
)

var (
	ErrSessionActive = errors.New("a session is already active")
	ErrSessionEnded  = errors.New("session already ended")
)

// Publisher announces record changes to other processes.
type Publisher interface {
	Publish(ctx context.Context, e amqp.RecordEvent) error
}

// Dispatcher is the part of store.Store the ledger updates.
type Dispatcher interface {
	Dispatch(a store.Action) store.AppState
}

// Ledger orchestrates record changes across storage, the state store and
// event publication. Storage is the source of truth: a change is persisted
// first, then mirrored into the store, then announced.
type Ledger struct {
	records   storage.Records
	store     Dispatcher
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	// startMu makes the active-session check and the create in StartSession
	// one step.
	startMu sync.Mutex

	transactions *storage.Collection[core.Transaction]
	goals        *storage.Collection[core.Goal]
	categories   *storage.Collection[core.Category]
	sessions     *storage.Collection[core.Session]
}

type LedgerOption func(*Ledger)

// WithPublisher enables change events. Without one, events are skipped.
func WithPublisher(p Publisher) LedgerOption {
	return func(l *Ledger) { l.publisher = p }
}

func WithLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(records storage.Records, st Dispatcher, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		records:      records,
		store:        st,
		logger:       slog.Default(),
		now:          time.Now,
		newID:        uuid.NewString,
		transactions: storage.Transactions(records),
		goals:        storage.Goals(records),
		categories:   storage.Categories(records),
		sessions:     storage.Sessions(records),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every collection from storage into the store. Collections load
// concurrently; each one flags its loading slot while it runs and records a
// failure in its error slot. The first failure is also returned.
func (l *Ledger) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return load(ctx, l, store.DomainTransactions, l.transactions) })
	g.Go(func() error { return load(ctx, l, store.DomainGoals, l.goals) })
	g.Go(func() error { return load(ctx, l, store.DomainCategories, l.categories) })
	g.Go(func() error { return load(ctx, l, store.DomainSessions, l.sessions) })
	return g.Wait()
}

func load[T store.Record](ctx context.Context, l *Ledger, domain store.Domain, coll *storage.Collection[T]) error {
	l.store.Dispatch(store.SetLoading{Key: domain, Value: true})
	defer l.store.Dispatch(store.SetLoading{Key: domain, Value: false})

	items, err := coll.List(ctx)
	if err != nil {
		l.store.Dispatch(store.Fail(domain, err.Error()))
		l.logger.ErrorContext(ctx, "Failed to load collection", "domain", domain, "error", err)
		return fmt.Errorf("load %s: %w", domain, err)
	}
	l.store.Dispatch(store.SetItems[T]{Items: items})
	l.store.Dispatch(store.Recover(domain))
	return nil
}

func (l *Ledger) stamp() (string, time.Time) {
	return l.newID(), l.now().UTC()
}

// CreateTransaction assigns an id and timestamps, then stores t.
func (l *Ledger) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID, t.CreatedAt = l.stamp()
	t.UpdatedAt = t.CreatedAt
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, create(ctx, l, l.transactions, t, t.ID)
}

// UpdateTransaction replaces the stored transaction with the same id,
// keeping its creation time.
func (l *Ledger) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	prev, err := l.transactions.Get(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CreatedAt, t.UpdatedAt = prev.CreatedAt, l.now().UTC()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, update(ctx, l, l.transactions, t, t.ID)
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	return remove(ctx, l, l.transactions, id)
}

func (l *Ledger) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.ID, g.CreatedAt = l.stamp()
	g.UpdatedAt = g.CreatedAt
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if g.Category == "" {
		g.Category = core.CategoryOther
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	return g, create(ctx, l, l.goals, g, g.ID)
}

func (l *Ledger) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	prev, err := l.goals.Get(ctx, g.ID)
	if err != nil {
		return core.Goal{}, err
	}
	g.CreatedAt, g.UpdatedAt = prev.CreatedAt, l.now().UTC()
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	return g, update(ctx, l, l.goals, g, g.ID)
}

func (l *Ledger) DeleteGoal(ctx context.Context, id string) error {
	return remove(ctx, l, l.goals, id)
}

func (l *Ledger) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID, c.CreatedAt = l.stamp()
	c.UpdatedAt = c.CreatedAt
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return c, create(ctx, l, l.categories, c, c.ID)
}

func (l *Ledger) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	prev, err := l.categories.Get(ctx, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	c.CreatedAt, c.UpdatedAt = prev.CreatedAt, l.now().UTC()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return c, update(ctx, l, l.categories, c, c.ID)
}

func (l *Ledger) DeleteCategory(ctx context.Context, id string) error {
	return remove(ctx, l, l.categories, id)
}

// CreateSession stores s as given. StartSession is the usual entry point.
func (l *Ledger) CreateSession(ctx context.Context, s core.Session) (core.Session, error) {
	s.ID, s.CreatedAt = l.stamp()
	s.UpdatedAt = s.CreatedAt
	s.DurationMinutes = durationMinutes(s.StartedAt, s.EndedAt)
	if err := s.Validate(); err != nil {
		return core.Session{}, err
	}
	return s, create(ctx, l, l.sessions, s, s.ID)
}

func (l *Ledger) UpdateSession(ctx context.Context, s core.Session) (core.Session, error) {
	prev, err := l.sessions.Get(ctx, s.ID)
	if err != nil {
		return core.Session{}, err
	}
	s.CreatedAt, s.UpdatedAt = prev.CreatedAt, l.now().UTC()
	s.DurationMinutes = durationMinutes(s.StartedAt, s.EndedAt)
	if err := s.Validate(); err != nil {
		return core.Session{}, err
	}
	return s, update(ctx, l, l.sessions, s, s.ID)
}

func (l *Ledger) DeleteSession(ctx context.Context, id string) error {
	return remove(ctx, l, l.sessions, id)
}

// StartSession opens a new active session starting now. Only one session
// may be active at a time.
func (l *Ledger) StartSession(ctx context.Context, kind core.SessionKind, description string) (core.Session, error) {
	l.startMu.Lock()
	defer l.startMu.Unlock()

	all, err := l.sessions.List(ctx)
	if err != nil {
		return core.Session{}, err
	}
	for _, s := range all {
		if s.Active {
			return core.Session{}, ErrSessionActive
		}
	}
	if kind == "" {
		kind = core.SessionWork
	}
	return l.CreateSession(ctx, core.Session{
		Kind:        kind,
		Description: description,
		StartedAt:   l.now().UTC(),
		Active:      true,
	})
}

// EndSession closes an active session and records its duration.
func (l *Ledger) EndSession(ctx context.Context, id string) (core.Session, error) {
	s, err := l.sessions.Get(ctx, id)
	if err != nil {
		return core.Session{}, err
	}
	if !s.Active {
		return core.Session{}, ErrSessionEnded
	}
	end := l.now().UTC()
	s.EndedAt = &end
	s.Active = false
	return l.UpdateSession(ctx, s)
}

func durationMinutes(start time.Time, end *time.Time) *int {
	if end == nil || start.IsZero() {
		return nil
	}
	m := int(end.Sub(start) / time.Minute)
	if m < 0 {
		m = 0
	}
	return &m
}

func create[T store.Record](ctx context.Context, l *Ledger, coll *storage.Collection[T], v T, id string) error {
	if err := coll.Create(ctx, v); err != nil {
		return fmt.Errorf("save %s: %w", coll.Kind(), err)
	}
	l.store.Dispatch(store.AddItem[T]{Item: v})
	l.publish(ctx, amqp.NewRecordEvent(coll.Kind(), id, amqp.OpUpsert))
	return nil
}

func update[T store.Record](ctx context.Context, l *Ledger, coll *storage.Collection[T], v T, id string) error {
	if err := coll.Put(ctx, v); err != nil {
		return fmt.Errorf("save %s: %w", coll.Kind(), err)
	}
	l.store.Dispatch(store.UpdateItem[T]{Item: v})
	l.publish(ctx, amqp.NewRecordEvent(coll.Kind(), id, amqp.OpUpsert))
	return nil
}

func remove[T store.Record](ctx context.Context, l *Ledger, coll *storage.Collection[T], id string) error {
	if err := coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", coll.Kind(), err)
	}
	l.store.Dispatch(store.DeleteItem[T]{ID: id})
	l.publish(ctx, amqp.NewRecordEvent(coll.Kind(), id, amqp.OpDelete))
	return nil
}

// publish never fails the caller: the record is already stored.
func (l *Ledger) publish(ctx context.Context, e amqp.RecordEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, e); err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish record event",
			"kind", e.Kind, "id", e.ID, "op", e.Op, "error", err)
	}
}
