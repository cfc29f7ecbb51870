package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivefin/internal/amqp"
	"drivefin/internal/core"
	"drivefin/internal/storage"
	"drivefin/internal/storage/memory"
	"drivefin/internal/store"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.RecordEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e amqp.RecordEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type failingRecords struct {
	storage.Records
	failKind storage.Kind
}

func (f failingRecords) List(ctx context.Context, kind storage.Kind) ([]storage.Document, error) {
	if kind == f.failKind {
		return nil, errors.New("disk on fire")
	}
	return f.Records.List(ctx, kind)
}

type fixture struct {
	ledger    *Ledger
	records   *memory.Store
	store     *store.Store
	publisher *recordingPublisher
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		records:   memory.New(),
		store:     store.New(store.InitialState()),
		publisher: &recordingPublisher{},
		clock:     time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
	}
	n := 0
	f.ledger = NewLedger(f.records, f.store,
		WithPublisher(f.publisher),
		WithClock(func() time.Time { return f.clock }),
	)
	f.ledger.newID = func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
	return f
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Kind:        core.Income,
		Amount:      152.40,
		Description: "Corridas Uber",
		Category:    "Uber",
		Date:        core.NewDate(2025, 6, 14),
	}
}

func TestLedger_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tx, err := f.ledger.CreateTransaction(ctx, sampleTransaction())
	require.NoError(t, err)
	assert.Equal(t, "id-1", tx.ID)
	assert.Equal(t, f.clock, tx.CreatedAt)

	stored, err := storage.Transactions(f.records).Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "Corridas Uber", stored.Description)

	state := f.store.State()
	require.Len(t, state.Transactions, 1)
	assert.Equal(t, "id-1", state.Transactions[0].ID)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, storage.KindTransactions, f.publisher.events[0].Kind)
	assert.Equal(t, amqp.OpUpsert, f.publisher.events[0].Op)
}

func TestLedger_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bad := sampleTransaction()
	bad.Amount = 0
	_, err := f.ledger.CreateTransaction(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = f.ledger.CreateGoal(ctx, core.Goal{Title: "", TargetValue: 10, Deadline: core.NewDate(2025, 12, 1)})
	assert.ErrorIs(t, err, core.ErrEmptyTitle)

	assert.Empty(t, f.store.State().Transactions)
	assert.Empty(t, f.publisher.events)
}

func TestLedger_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	g, err := f.ledger.CreateGoal(ctx, core.Goal{Title: "Reserva", TargetValue: 1000, Deadline: core.NewDate(2025, 12, 31)})
	require.NoError(t, err)
	assert.Equal(t, core.GoalActive, g.Status)
	assert.Equal(t, core.CategoryOther, g.Category)

	f.clock = f.clock.Add(time.Hour)
	g.CurrentValue = 400
	g.CreatedAt = time.Time{}
	updated, err := f.ledger.UpdateGoal(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Add(-time.Hour), updated.CreatedAt)
	assert.Equal(t, f.clock, updated.UpdatedAt)
	assert.Equal(t, 400.0, f.store.State().Goals[0].CurrentValue)

	_, err = f.ledger.UpdateGoal(ctx, core.Goal{ID: "missing", Title: "x", TargetValue: 1, Deadline: core.NewDate(2025, 1, 1)})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLedger_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c, err := f.ledger.CreateCategory(ctx, core.Category{Name: "Combustível", Kind: core.Expense, Color: "#f00"})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteCategory(ctx, c.ID))
	assert.Empty(t, f.store.State().Categories)
	assert.Equal(t, amqp.OpDelete, f.publisher.events[len(f.publisher.events)-1].Op)

	assert.ErrorIs(t, f.ledger.DeleteCategory(ctx, c.ID), storage.ErrNotFound)
	assert.ErrorIs(t, f.ledger.DeleteTransaction(ctx, "nope"), storage.ErrNotFound)
}

func TestLedger_PublishFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	_, err := f.ledger.CreateTransaction(ctx, sampleTransaction())

	assert.NoError(t, err)
	assert.Len(t, f.store.State().Transactions, 1)
}

func TestLedger_WithoutPublisher(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.InitialState())
	l := NewLedger(memory.New(), st)

	_, err := l.CreateTransaction(ctx, sampleTransaction())
	require.NoError(t, err)
	assert.Len(t, st.State().Transactions, 1)
}

func TestLedger_Sessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	s, err := f.ledger.StartSession(ctx, "", "turno da manhã")
	require.NoError(t, err)
	assert.True(t, s.Active)
	assert.Equal(t, core.SessionWork, s.Kind)

	_, err = f.ledger.StartSession(ctx, core.SessionWork, "")
	assert.ErrorIs(t, err, ErrSessionActive)

	f.clock = f.clock.Add(95 * time.Minute)
	ended, err := f.ledger.EndSession(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ended.Active)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, 95, *ended.DurationMinutes)
	assert.False(t, f.store.State().Sessions[0].Active)

	_, err = f.ledger.EndSession(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionEnded)

	_, err = f.ledger.StartSession(ctx, core.SessionStudy, "")
	assert.NoError(t, err)
}

func TestLedger_ConcurrentStartSession(t *testing.T) {
	ctx := context.Background()
	records := memory.New()
	l := NewLedger(records, store.New(store.InitialState()))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		started  int
		rejected int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.StartSession(ctx, core.SessionWork, "")
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, ErrSessionActive) {
				rejected++
			} else if assert.NoError(t, err) {
				started++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
	assert.Equal(t, 19, rejected)
	docs, err := records.List(ctx, storage.KindSessions)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLedger_Load(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.ledger.CreateTransaction(ctx, sampleTransaction())
	require.NoError(t, err)
	_, err = f.ledger.CreateGoal(ctx, core.Goal{Title: "Reserva", TargetValue: 1000, Deadline: core.NewDate(2025, 12, 31)})
	require.NoError(t, err)

	st := store.New(store.InitialState())
	require.NoError(t, NewLedger(f.records, st).Load(ctx))

	s := st.State()
	assert.Len(t, s.Transactions, 1)
	assert.Len(t, s.Goals, 1)
	assert.Empty(t, s.Sessions)
	for _, d := range []store.Domain{store.DomainTransactions, store.DomainGoals, store.DomainCategories, store.DomainSessions} {
		assert.False(t, s.Loading[d], d)
		_, failed := s.Error(d)
		assert.False(t, failed, d)
	}
}

func TestLedger_LoadRecordsFailure(t *testing.T) {
	ctx := context.Background()
	records := failingRecords{Records: memory.New(), failKind: storage.KindGoals}
	st := store.New(store.InitialState())

	err := NewLedger(records, st).Load(ctx)

	require.Error(t, err)
	s := st.State()
	msg, failed := s.Error(store.DomainGoals)
	assert.True(t, failed)
	assert.Contains(t, msg, "disk on fire")
	assert.False(t, s.Loading[store.DomainGoals])
	_, failed = s.Error(store.DomainTransactions)
	assert.False(t, failed)
}
