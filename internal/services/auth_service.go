package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"drivefin/internal/auth"
	"drivefin/internal/core"
	"drivefin/internal/session"
	"drivefin/internal/storage"
)

// TrialPeriod is how long a new account may use paid features.
const TrialPeriod = 7 * 24 * time.Hour

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrUsernameTaken    = errors.New("username already in use")
	ErrEmailTaken       = errors.New("email already in use")
)

type account struct {
	User         core.User `json:"user"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// AuthService registers users and signs them in and out.
type AuthService struct {
	accounts *storage.Collection[account]
	tokens   *auth.TokenManager
	sessions *session.Manager
	loader   func(context.Context) error
	now      func() time.Time
}

type AuthOption func(*AuthService)

// WithLoader sets the function that refills the store after a sign-in,
// usually Ledger.Load. A load failure does not fail the login: it is
// already recorded in the store's error slots.
func WithLoader(load func(context.Context) error) AuthOption {
	return func(s *AuthService) { s.loader = load }
}

func NewAuthService(records storage.Records, tokens *auth.TokenManager, sessions *session.Manager, opts ...AuthOption) *AuthService {
	s := &AuthService{
		accounts: storage.NewCollection(records, storage.KindUsers, func(a account) (string, time.Time, time.Time) {
			return a.User.Username, a.CreatedAt, a.UpdatedAt
		}),
		tokens:   tokens,
		sessions: sessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account with a trial period starting now.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return core.User{}, ErrUsernameRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return core.User{}, ErrInvalidEmail
	}
	if _, err := s.findByEmail(ctx, email); err == nil {
		return core.User{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return core.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, err
	}

	now := s.now().UTC()
	trialEnds := now.Add(TrialPeriod)
	a := account{
		User: core.User{
			ID:            uuid.NewString(),
			Username:      username,
			Email:         email,
			FullName:      strings.TrimSpace(in.FullName),
			PlanStatus:    "trial",
			TrialEndsAt:   &trialEnds,
			PaymentStatus: "pending",
		},
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return core.User{}, ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create account: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "username", username)
	return a.User, nil
}

// Login checks the password for a username or email, issues a token and
// signs the user into the session.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, core.User, error) {
	a, err := s.find(ctx, login)
	if errors.Is(err, storage.ErrNotFound) {
		return "", core.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return "", core.User{}, err
	}
	if err := auth.CheckPassword(a.PasswordHash, password); err != nil {
		return "", core.User{}, err
	}

	token, err := s.tokens.Generate(a.User)
	if err != nil {
		return "", core.User{}, err
	}
	if err := s.sessions.Login(ctx, token, a.User, s.now()); err != nil {
		return "", core.User{}, err
	}
	if s.loader != nil {
		if err := s.loader(ctx); err != nil {
			slog.WarnContext(ctx, "Failed to reload records after login", "username", a.User.Username, "error", err)
		}
	}
	return token, a.User, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (core.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return core.User{}, err
	}
	a, err := s.accounts.Get(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.User{}, auth.ErrInvalidToken
		}
		return core.User{}, err
	}
	if a.User.ID != claims.Subject {
		return core.User{}, auth.ErrInvalidToken
	}
	return a.User, nil
}

func (s *AuthService) find(ctx context.Context, login string) (account, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if strings.Contains(login, "@") {
		return s.findByEmail(ctx, login)
	}
	return s.accounts.Get(ctx, login)
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (account, error) {
	all, err := s.accounts.List(ctx)
	if err != nil {
		return account{}, err
	}
	for _, a := range all {
		if a.User.Email == email {
			return a, nil
		}
	}
	return account{}, storage.ErrNotFound
}
