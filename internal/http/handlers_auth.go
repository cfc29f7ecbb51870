package http

import (
	"context"
	"net/http"

	"drivefin/internal/core"
	"drivefin/internal/log"
	"drivefin/internal/services"
)

type ctxKey int

const userKey ctxKey = iota

// UserFromContext returns the user the bearer token resolved to.
func UserFromContext(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey).(core.User)
	return u, ok
}

// authenticated rejects requests without a valid bearer token.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			UnauthorizedError("missing bearer token").Write(w)
			return
		}
		user, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = log.WithLogger(ctx, log.FromContext(ctx).With(log.FieldUsername, user.Username))
		next(w, r.WithContext(ctx))
	})
}

// data guards the record routes: authentication plus, when configured, an
// active trial or plan.
func (s *Server) data(next http.HandlerFunc) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		if s.requireSubscription {
			u, _ := UserFromContext(r.Context())
			if !core.IsSubscribed(u, s.now()) {
				ErrorResponse(http.StatusPaymentRequired, CodePaymentRequired, "an active subscription is required").Write(w)
				return
			}
		}
		next(w, r)
	})
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	User      core.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Username = sanitizeInput(in.Username)
	in.Email = sanitizeInput(in.Email)
	in.FullName = sanitizeInput(in.FullName)

	user, err := s.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).InfoContext(r.Context(), "Account registered", log.FieldUsername, user.Username)
	Created(user).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	token, user, err := s.auth.Login(r.Context(), sanitizeInput(in.Login), in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(loginResponse{Token: token, TokenType: "Bearer", User: user}).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	OK(nil).Message("logged out").Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	OK(map[string]any{
		"user":         u,
		"isSubscribed": core.IsSubscribed(u, s.now()),
	}).Write(w)
}
