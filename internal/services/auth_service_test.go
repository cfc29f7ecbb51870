package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivefin/internal/auth"
	"drivefin/internal/core"
	"drivefin/internal/session"
	"drivefin/internal/storage/memory"
	"drivefin/internal/store"
)

func newAuthService(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	records := memory.New()
	st := store.New(store.InitialState())
	sessions := session.NewManager(records, st, nil)
	return NewAuthService(records, auth.NewTokenManager("test-secret", "drivefin", time.Hour), sessions), st
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, st := newAuthService(t)

	u, err := svc.Register(ctx, RegisterInput{Username: " Ana ", Email: "Ana@Example.com", Password: "motorista123"})
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, "ana@example.com", u.Email)
	require.NotNil(t, u.TrialEndsAt)

	token, logged, err := svc.Login(ctx, "ANA", "motorista123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotEmpty(t, token)

	s := st.State()
	assert.True(t, s.IsAuthenticated)
	assert.True(t, s.IsPaid, "trial users are subscribed")

	_, _, err = svc.Login(ctx, "ana@example.com", "motorista123")
	assert.NoError(t, err)

	who, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, who.ID)

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, st.State().IsAuthenticated)
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	_, err := svc.Register(ctx, RegisterInput{Username: "ana", Email: "ana@example.com", Password: "motorista123"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"same username", RegisterInput{Username: "ANA", Email: "other@example.com", Password: "motorista123"}, ErrUsernameTaken},
		{"same email", RegisterInput{Username: "bia", Email: "ana@example.com", Password: "motorista123"}, ErrEmailTaken},
		{"no username", RegisterInput{Email: "x@example.com", Password: "motorista123"}, ErrUsernameRequired},
		{"bad email", RegisterInput{Username: "bia", Email: "nope", Password: "motorista123"}, ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, st := newAuthService(t)
	_, err := svc.Register(ctx, RegisterInput{Username: "ana", Email: "ana@example.com", Password: "motorista123"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "ghost", "motorista123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.False(t, st.State().IsAuthenticated)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_LoginReloadsRecords(t *testing.T) {
	ctx := context.Background()
	records := memory.New()
	st := store.New(store.InitialState())
	ledger := NewLedger(records, st)
	sessions := session.NewManager(records, st, nil)
	svc := NewAuthService(records, auth.NewTokenManager("test-secret", "drivefin", time.Hour), sessions, WithLoader(ledger.Load))

	_, err := svc.Register(ctx, RegisterInput{Username: "ana", Email: "ana@example.com", Password: "motorista123"})
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "ana", "motorista123")
	require.NoError(t, err)

	_, err = ledger.CreateGoal(ctx, core.Goal{
		Title:       "Reserva",
		TargetValue: 1000,
		Deadline:    core.NewDate(2030, 1, 1),
		Category:    core.CategoryEmergency,
		Status:      core.GoalActive,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	assert.Empty(t, st.State().Goals)

	_, _, err = svc.Login(ctx, "ana", "motorista123")
	require.NoError(t, err)
	require.Len(t, st.State().Goals, 1)
	assert.Equal(t, "Reserva", st.State().Goals[0].Title)
}

func TestAuthService_LoginSurvivesLoadFailure(t *testing.T) {
	ctx := context.Background()
	records := memory.New()
	st := store.New(store.InitialState())
	sessions := session.NewManager(records, st, nil)
	failing := func(context.Context) error { return errors.New("storage offline") }
	svc := NewAuthService(records, auth.NewTokenManager("test-secret", "drivefin", time.Hour), sessions, WithLoader(failing))

	_, err := svc.Register(ctx, RegisterInput{Username: "ana", Email: "ana@example.com", Password: "motorista123"})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "ana", "motorista123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, st.State().IsAuthenticated)
}
