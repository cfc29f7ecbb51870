package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivefin/internal/core"
)

func tx(id string, amount float64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Kind:        core.Expense,
		Amount:      amount,
		Description: "fuel",
		Category:    "Combustível",
		Date:        core.NewDate(2025, 6, 1),
	}
}

func TestInitialState(t *testing.T) {
	s := InitialState()

	assert.Nil(t, s.User)
	assert.False(t, s.IsAuthenticated)
	assert.False(t, s.IsPaid)
	assert.Empty(t, s.Transactions)
	assert.Empty(t, s.Goals)
	assert.Equal(t, ThemeDark, s.Theme)
	assert.False(t, s.SidebarOpen)
	for _, d := range Domains {
		assert.False(t, s.Loading[d], d)
		assert.Nil(t, s.Errors[d], d)
	}
}

func TestReduce_Logout(t *testing.T) {
	s := InitialState()
	s = Reduce(s, SetUser{User: &core.User{ID: "u1", Username: "ana"}})
	s = Reduce(s, SetPaidStatus{Value: true})
	s = Reduce(s, AddTransaction(tx("t1", 10)))
	s = Reduce(s, AddGoal(core.Goal{ID: "g1"}))
	s = Reduce(s, SetLoading{Key: DomainGoals, Value: true})
	s = Reduce(s, Fail(DomainGoals, "boom"))
	s = Reduce(s, SetTheme{Theme: ThemeLight})
	s = Reduce(s, SetSidebar{Open: true})
	require.True(t, s.IsAuthenticated)

	out := Reduce(s, Logout{})

	assert.Nil(t, out.User)
	assert.False(t, out.IsAuthenticated)
	assert.False(t, out.IsPaid)
	assert.Empty(t, out.Transactions)
	assert.NotNil(t, out.Transactions)
	assert.Empty(t, out.Goals)
	assert.Empty(t, out.Categories)
	assert.Empty(t, out.Sessions)
	assert.Nil(t, out.Errors[DomainGoals])
	assert.Len(t, out.Errors, len(Domains))

	// untouched by logout
	assert.True(t, out.Loading[DomainGoals])
	assert.Equal(t, ThemeLight, out.Theme)
	assert.True(t, out.SidebarOpen)

	// input snapshot unchanged
	assert.Len(t, s.Transactions, 1)
	msg, ok := s.Error(DomainGoals)
	assert.True(t, ok)
	assert.Equal(t, "boom", msg)
}

func TestReduce_AddPrepends(t *testing.T) {
	s := Reduce(InitialState(), SetTransactions([]core.Transaction{tx("t1", 10)}))

	out := Reduce(s, AddTransaction(tx("t2", 20)))

	require.Len(t, out.Transactions, 2)
	assert.Equal(t, "t2", out.Transactions[0].ID)
	assert.Equal(t, "t1", out.Transactions[1].ID)
	assert.Len(t, s.Transactions, 1)
}

func TestReduce_UpdateAndDelete(t *testing.T) {
	s := Reduce(InitialState(), SetGoals([]core.Goal{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
	}))

	updated := Reduce(s, UpdateGoal(core.Goal{ID: "b", Title: "B2"}))
	require.Len(t, updated.Goals, 3)
	assert.Equal(t, "B2", updated.Goals[1].Title)
	assert.Equal(t, "B", s.Goals[1].Title, "input must not change")

	missing := Reduce(s, UpdateGoal(core.Goal{ID: "zz", Title: "Z"}))
	assert.Equal(t, s.Goals, missing.Goals)

	deleted := Reduce(updated, DeleteGoal("a"))
	require.Len(t, deleted.Goals, 2)
	assert.Equal(t, "b", deleted.Goals[0].ID)
	assert.Equal(t, "c", deleted.Goals[1].ID)
	assert.Len(t, updated.Goals, 3)
}

func TestReduce_CollectionsAreIndependent(t *testing.T) {
	s := InitialState()
	s = Reduce(s, AddCategory(core.Category{ID: "c1", Name: "Uber"}))
	s = Reduce(s, AddSession(core.Session{ID: "s1", Kind: core.SessionWork, StartedAt: time.Now()}))
	s = Reduce(s, DeleteCategory("s1"))

	assert.Len(t, s.Categories, 1)
	assert.Len(t, s.Sessions, 1)

	s = Reduce(s, UpdateSession(core.Session{ID: "s1", Kind: core.SessionStudy}))
	assert.Equal(t, core.SessionStudy, s.Sessions[0].Kind)
	s = Reduce(s, DeleteSession("s1"))
	assert.Empty(t, s.Sessions)
	s = Reduce(s, UpdateCategory(core.Category{ID: "c1", Name: "99"}))
	assert.Equal(t, "99", s.Categories[0].Name)
	s = Reduce(s, UpdateTransaction(tx("none", 1)))
	s = Reduce(s, DeleteTransaction("none"))
	assert.Empty(t, s.Transactions)
}

func TestReduce_SetCopiesInput(t *testing.T) {
	items := []core.Transaction{tx("t1", 10)}
	s := Reduce(InitialState(), SetTransactions(items))
	items[0].ID = "changed"

	assert.Equal(t, "t1", s.Transactions[0].ID)

	empty := Reduce(s, SetTransactions(nil))
	assert.NotNil(t, empty.Transactions)
	assert.Empty(t, empty.Transactions)
}

func TestReduce_UserFlags(t *testing.T) {
	s := Reduce(InitialState(), SetPaidStatus{Value: true})
	s = Reduce(s, SetUser{User: &core.User{ID: "u1"}})
	assert.True(t, s.IsAuthenticated)
	assert.True(t, s.IsPaid, "SetUser leaves the paid flag alone")

	s = Reduce(s, SetUser{User: nil})
	assert.False(t, s.IsAuthenticated)

	s = Reduce(s, SetAuthenticated{Value: true})
	assert.True(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
}

func TestReduce_LoadingAndErrors(t *testing.T) {
	s := InitialState()

	loading := Reduce(s, SetLoading{Key: DomainTransactions, Value: true})
	assert.True(t, loading.Loading[DomainTransactions])
	for _, d := range Domains {
		if d != DomainTransactions {
			assert.False(t, loading.Loading[d], d)
		}
	}
	assert.False(t, s.Loading[DomainTransactions], "input map must not change")

	failed := Reduce(loading, Fail(DomainPayments, "card declined"))
	failed = Reduce(failed, Fail(DomainAuth, "expired"))
	msg, ok := failed.Error(DomainPayments)
	require.True(t, ok)
	assert.Equal(t, "card declined", msg)

	recovered := Reduce(failed, Recover(DomainPayments))
	_, ok = recovered.Error(DomainPayments)
	assert.False(t, ok)
	_, ok = recovered.Error(DomainAuth)
	assert.True(t, ok)

	cleared := Reduce(failed, ClearErrors{})
	for _, d := range Domains {
		assert.Nil(t, cleared.Errors[d], d)
	}
	assert.True(t, cleared.Loading[DomainTransactions])
}

func TestReduce_Sidebar(t *testing.T) {
	s := InitialState()

	once := Reduce(s, SetSidebar{Open: true})
	twice := Reduce(once, SetSidebar{Open: true})
	assert.Equal(t, once, twice)

	toggled := Reduce(Reduce(s, ToggleSidebar{}), ToggleSidebar{})
	assert.Equal(t, s.SidebarOpen, toggled.SidebarOpen)
	assert.True(t, Reduce(s, ToggleSidebar{}).SidebarOpen)
}

func TestReduce_ThemeIsNotValidated(t *testing.T) {
	s := Reduce(InitialState(), SetTheme{Theme: "sepia"})
	assert.Equal(t, Theme("sepia"), s.Theme)
}

func TestReduce_UnknownPassesThrough(t *testing.T) {
	s := Reduce(InitialState(), AddGoal(core.Goal{ID: "g1"}))

	out := Reduce(s, Unknown{Kind: "SET_WALLPAPER"})

	assert.Equal(t, s, out)
}

func TestActionTypes(t *testing.T) {
	tests := []struct {
		action Action
		want   ActionType
	}{
		{SetTransactions(nil), TypeSetTransactions},
		{AddTransaction(core.Transaction{}), TypeAddTransaction},
		{UpdateGoal(core.Goal{}), TypeUpdateGoal},
		{DeleteGoal("x"), TypeDeleteGoal},
		{SetCategories(nil), TypeSetCategories},
		{AddCategory(core.Category{}), TypeAddCategory},
		{SetSessions(nil), TypeSetSessions},
		{DeleteSession("x"), TypeDeleteSession},
		{Logout{}, TypeLogout},
		{Fail(DomainAuth, "x"), TypeSetError},
		{Unknown{Kind: "NOPE"}, ActionType("NOPE")},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.Type())
		})
	}
}
