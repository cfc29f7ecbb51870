// Package session persists the signed-in user and UI theme across restarts
// and replays them into the store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"drivefin/internal/core"
	"drivefin/internal/storage"
	"drivefin/internal/store"
)

// Persisted keys.
const (
	KeyToken                = "authToken"
	KeyUser                 = "userData"
	KeyTheme                = "theme"
	KeyTempUserID           = "tempUserId"
	KeyPendingPaymentUserID = "pendingPaymentUserId"
)

// RestoreFailed is recorded in the auth error slot when the persisted
// session cannot be read.
const RestoreFailed = "could not verify authentication"

// Dispatcher is the part of store.Store the manager drives.
type Dispatcher interface {
	State() store.AppState
	Dispatch(a store.Action) store.AppState
	Subscribe(fn store.Listener) (unsubscribe func())
}

type Manager struct {
	prefs  storage.Prefs
	store  Dispatcher
	logger *slog.Logger
}

func NewManager(prefs storage.Prefs, st Dispatcher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{prefs: prefs, store: st, logger: logger}
}

// Login persists the token and user and marks the store authenticated.
func (m *Manager) Login(ctx context.Context, token string, u core.User, now time.Time) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.prefs.SetPref(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := m.prefs.SetPref(ctx, KeyUser, string(data)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	m.signIn(u, now)
	return nil
}

func (m *Manager) signIn(u core.User, now time.Time) {
	m.store.Dispatch(store.SetUser{User: &u})
	m.store.Dispatch(store.SetAuthenticated{Value: true})
	m.store.Dispatch(store.SetPaidStatus{Value: core.IsSubscribed(u, now)})
}

// Logout forgets the persisted session and resets the store. The store is
// reset even when clearing a key fails.
func (m *Manager) Logout(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyToken, KeyUser, KeyTempUserID, KeyPendingPaymentUserID} {
		if err := m.prefs.DeletePref(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	m.store.Dispatch(store.Logout{})
	return errors.Join(errs...)
}

// Token returns the persisted auth token, if any.
func (m *Manager) Token(ctx context.Context) (string, bool, error) {
	return m.prefs.GetPref(ctx, KeyToken)
}

// Restore rebuilds the signed-in state from the persisted keys. A session
// whose user data cannot be decoded is discarded and reported through the
// auth error slot rather than returned.
func (m *Manager) Restore(ctx context.Context, now time.Time) error {
	m.store.Dispatch(store.SetLoading{Key: store.DomainAuth, Value: true})
	defer m.store.Dispatch(store.SetLoading{Key: store.DomainAuth, Value: false})

	token, hasToken, err := m.prefs.GetPref(ctx, KeyToken)
	if err != nil {
		return m.restoreFailed(ctx, fmt.Errorf("read token: %w", err))
	}
	data, hasUser, err := m.prefs.GetPref(ctx, KeyUser)
	if err != nil {
		return m.restoreFailed(ctx, fmt.Errorf("read user: %w", err))
	}

	if !hasToken || token == "" || !hasUser || data == "" {
		m.store.Dispatch(store.SetAuthenticated{Value: false})
		return nil
	}

	var u core.User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		m.logger.WarnContext(ctx, "Discarding corrupt session", "error", err)
		return m.restoreFailed(ctx, nil)
	}
	m.signIn(u, now)
	return nil
}

func (m *Manager) restoreFailed(ctx context.Context, cause error) error {
	var errs []error
	if cause != nil {
		errs = append(errs, cause)
	}
	for _, key := range []string{KeyToken, KeyUser} {
		if err := m.prefs.DeletePref(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	m.store.Dispatch(store.SetAuthenticated{Value: false})
	m.store.Dispatch(store.Fail(store.DomainAuth, RestoreFailed))
	return errors.Join(errs...)
}

// LoadTheme applies the persisted theme when it is light or dark.
func (m *Manager) LoadTheme(ctx context.Context) error {
	v, ok, err := m.prefs.GetPref(ctx, KeyTheme)
	if err != nil {
		return fmt.Errorf("read theme: %w", err)
	}
	if !ok {
		return nil
	}
	switch theme := store.Theme(v); theme {
	case store.ThemeLight, store.ThemeDark:
		m.store.Dispatch(store.SetTheme{Theme: theme})
	}
	return nil
}

// PersistTheme writes the theme key whenever a dispatch changes the theme.
// The returned function stops it.
func (m *Manager) PersistTheme(ctx context.Context) (stop func()) {
	last := m.store.State().Theme
	return m.store.Subscribe(func(s store.AppState, _ store.Action) {
		if s.Theme == last || s.Theme == "" {
			return
		}
		last = s.Theme
		if err := m.prefs.SetPref(ctx, KeyTheme, string(s.Theme)); err != nil {
			m.logger.ErrorContext(ctx, "Failed to persist theme", "theme", s.Theme, "error", err)
		}
	})
}
