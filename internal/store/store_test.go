package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivefin/internal/core"
)

func TestStore_DispatchUpdatesStateAndVersion(t *testing.T) {
	s := New(InitialState())
	require.Equal(t, uint64(0), s.Version())

	got := s.Dispatch(AddGoal(core.Goal{ID: "g1"}))

	assert.Len(t, got.Goals, 1)
	assert.Equal(t, got, s.State())
	assert.Equal(t, uint64(1), s.Version())

	s.Dispatch(Unknown{Kind: "IGNORED"})
	assert.Equal(t, uint64(2), s.Version(), "every dispatch counts")
}

func TestStore_SubscribersInOrder(t *testing.T) {
	s := New(InitialState())
	var calls []string

	s.Subscribe(func(st AppState, a Action) {
		calls = append(calls, "first:"+string(a.Type()))
		assert.True(t, st.SidebarOpen)
	})
	unsubscribe := s.Subscribe(func(AppState, Action) {
		calls = append(calls, "second")
	})

	s.Dispatch(SetSidebar{Open: true})
	unsubscribe()
	unsubscribe()
	s.Dispatch(SetSidebar{Open: true})

	assert.Equal(t, []string{"first:SET_SIDEBAR", "second", "first:SET_SIDEBAR"}, calls)
}

func TestStore_ListenerCanReadState(t *testing.T) {
	s := New(InitialState())
	var seen Theme
	s.Subscribe(func(AppState, Action) {
		seen = s.State().Theme
	})

	s.Dispatch(SetTheme{Theme: ThemeLight})

	assert.Equal(t, ThemeLight, seen)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := New(InitialState())
	var mu sync.Mutex
	notified := 0
	s.Subscribe(func(AppState, Action) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(AddTransaction(core.Transaction{ID: "t"}))
		}()
	}
	wg.Wait()

	assert.Len(t, s.State().Transactions, n)
	assert.Equal(t, uint64(n), s.Version())
	assert.Equal(t, n, notified)
}
