package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivefin/internal/core"
	"drivefin/internal/storage/memory"
	"drivefin/internal/store"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newManager(t *testing.T) (*Manager, *memory.Store, *store.Store) {
	t.Helper()
	prefs := memory.New()
	st := store.New(store.InitialState())
	return NewManager(prefs, st, nil), prefs, st
}

func TestLogin_PersistsAndAuthenticates(t *testing.T) {
	ctx := context.Background()
	m, prefs, st := newManager(t)
	trialEnds := now.Add(48 * time.Hour)
	u := core.User{ID: "u1", Username: "ana", TrialEndsAt: &trialEnds}

	require.NoError(t, m.Login(ctx, "tok", u, now))

	s := st.State()
	require.NotNil(t, s.User)
	assert.Equal(t, "ana", s.User.Username)
	assert.True(t, s.IsAuthenticated)
	assert.True(t, s.IsPaid, "running trial counts as subscribed")

	token, ok, err := prefs.GetPref(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
	_, ok, _ = prefs.GetPref(ctx, KeyUser)
	assert.True(t, ok)
}

func TestLogout_ClearsKeysAndState(t *testing.T) {
	ctx := context.Background()
	m, prefs, st := newManager(t)
	require.NoError(t, m.Login(ctx, "tok", core.User{ID: "u1", IsPaid: true}, now))
	require.NoError(t, prefs.SetPref(ctx, KeyTempUserID, "tmp"))
	st.Dispatch(store.AddGoal(core.Goal{ID: "g1"}))

	require.NoError(t, m.Logout(ctx))

	s := st.State()
	assert.Nil(t, s.User)
	assert.False(t, s.IsAuthenticated)
	assert.False(t, s.IsPaid)
	assert.Empty(t, s.Goals)
	for _, key := range []string{KeyToken, KeyUser, KeyTempUserID} {
		_, ok, err := prefs.GetPref(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session", func(t *testing.T) {
		m, prefs, st := newManager(t)
		require.NoError(t, prefs.SetPref(ctx, KeyToken, "tok"))
		require.NoError(t, prefs.SetPref(ctx, KeyUser, `{"id":"u1","username":"ana","isPaid":false,"planStatus":"active"}`))

		require.NoError(t, m.Restore(ctx, now))

		s := st.State()
		assert.True(t, s.IsAuthenticated)
		assert.True(t, s.IsPaid)
		assert.Equal(t, "u1", s.User.ID)
		assert.False(t, s.Loading[store.DomainAuth])
	})

	t.Run("no session", func(t *testing.T) {
		m, prefs, st := newManager(t)
		require.NoError(t, prefs.SetPref(ctx, KeyToken, "tok"))

		require.NoError(t, m.Restore(ctx, now))

		s := st.State()
		assert.False(t, s.IsAuthenticated)
		assert.Nil(t, s.User)
		_, failed := s.Error(store.DomainAuth)
		assert.False(t, failed)
	})

	t.Run("corrupt user data", func(t *testing.T) {
		m, prefs, st := newManager(t)
		require.NoError(t, prefs.SetPref(ctx, KeyToken, "tok"))
		require.NoError(t, prefs.SetPref(ctx, KeyUser, `{not json`))

		require.NoError(t, m.Restore(ctx, now))

		s := st.State()
		assert.False(t, s.IsAuthenticated)
		msg, failed := s.Error(store.DomainAuth)
		assert.True(t, failed)
		assert.Equal(t, RestoreFailed, msg)
		assert.False(t, s.Loading[store.DomainAuth])

		_, ok, _ := prefs.GetPref(ctx, KeyToken)
		assert.False(t, ok)
		_, ok, _ = prefs.GetPref(ctx, KeyUser)
		assert.False(t, ok)
	})
}

func TestTheme(t *testing.T) {
	ctx := context.Background()

	t.Run("load known theme", func(t *testing.T) {
		m, prefs, st := newManager(t)
		require.NoError(t, prefs.SetPref(ctx, KeyTheme, "light"))
		require.NoError(t, m.LoadTheme(ctx))
		assert.Equal(t, store.ThemeLight, st.State().Theme)
	})

	t.Run("ignore unknown theme", func(t *testing.T) {
		m, prefs, st := newManager(t)
		require.NoError(t, prefs.SetPref(ctx, KeyTheme, "neon"))
		require.NoError(t, m.LoadTheme(ctx))
		assert.Equal(t, store.ThemeDark, st.State().Theme)
	})

	t.Run("persist on change", func(t *testing.T) {
		m, prefs, st := newManager(t)
		stop := m.PersistTheme(ctx)

		st.Dispatch(store.ToggleSidebar{})
		_, ok, _ := prefs.GetPref(ctx, KeyTheme)
		assert.False(t, ok, "unchanged theme is not written")

		st.Dispatch(store.SetTheme{Theme: store.ThemeLight})
		v, ok, _ := prefs.GetPref(ctx, KeyTheme)
		assert.True(t, ok)
		assert.Equal(t, "light", v)

		stop()
		st.Dispatch(store.SetTheme{Theme: store.ThemeDark})
		v, _, _ = prefs.GetPref(ctx, KeyTheme)
		assert.Equal(t, "light", v)
	})
}

func TestToken(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newManager(t)

	_, ok, err := m.Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Login(ctx, "abc", core.User{ID: "u"}, now))
	tok, ok, err := m.Token(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)
}
