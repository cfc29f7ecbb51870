package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"drivefin/internal/cache"
	"drivefin/internal/core"
	"drivefin/internal/dashboard"
	"drivefin/internal/log"
	"drivefin/internal/metrics"
	"drivefin/internal/middleware/cors"
	"drivefin/internal/middleware/ratelimit"
	"drivefin/internal/middleware/security"
	"drivefin/internal/middleware/trace"
	"drivefin/internal/services"
	"drivefin/internal/store"
)

// Ledger is the record service behind the collection routes.
type Ledger interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateSession(ctx context.Context, s core.Session) (core.Session, error)
	UpdateSession(ctx context.Context, s core.Session) (core.Session, error)
	DeleteSession(ctx context.Context, id string) error
	StartSession(ctx context.Context, kind core.SessionKind, description string) (core.Session, error)
	EndSession(ctx context.Context, id string) (core.Session, error)
}

type Authenticator interface {
	Register(ctx context.Context, in services.RegisterInput) (core.User, error)
	Login(ctx context.Context, login, password string) (string, core.User, error)
	Logout(ctx context.Context) error
	Authenticate(ctx context.Context, token string) (core.User, error)
}

// StateStore is the read side of store.Store plus Dispatch for the client
// actions route.
type StateStore interface {
	State() store.AppState
	Version() uint64
	Dispatch(a store.Action) store.AppState
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server needs. Metrics is optional.
type Deps struct {
	Store   StateStore
	Ledger  Ledger
	Auth    Authenticator
	Storage Pinger
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

type Config struct {
	Addr               string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
	// RequireSubscription answers 402 on data routes for users whose trial
	// and plan have lapsed.
	RequireSubscription bool
}

type Server struct {
	http.Server

	store   StateStore
	ledger  Ledger
	auth    Authenticator
	storage Pinger
	metrics *metrics.Metrics
	logger  *log.Logger
	now     func() time.Time
	started time.Time

	requireSubscription bool

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	caches       *cache.Manager
	dashCache    *cache.LRUCache[dashboard.Stats]
	shutdownOnce sync.Once
}

type Option func(*Server)

// WithClock replaces time.Now for everything date dependent.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer wires routes and middleware. Call Shutdown to stop the
// background cleanup goroutines it starts.
func NewServer(cfg Config, deps Deps, opts ...Option) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		store:               deps.Store,
		ledger:              deps.Ledger,
		auth:                deps.Auth,
		storage:             deps.Storage,
		metrics:             deps.Metrics,
		logger:              logger,
		now:                 time.Now,
		requireSubscription: cfg.RequireSubscription,
		detector:            security.NewDetector(),
		limiter:             ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		caches:              cache.NewManager(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.now()

	size, ttl := cfg.CacheSize, cfg.CacheTTL
	if size <= 0 {
		size = 64
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	s.dashCache = cache.NewLRUCache[dashboard.Stats](size, ttl, cache.WithClock(s.now))
	s.caches.Register("dashboard", s.dashCache)
	s.caches.StartCleanup(ttl)

	mux := http.NewServeMux()
	s.routes(mux)

	var traceOpts []trace.Option
	if s.metrics != nil {
		traceOpts = append(traceOpts, trace.WithObserver(s.metrics))
	}
	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = cors.Middleware(cfg.CORSAllowedOrigins)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = trace.NewMiddleware(logger, s.detector.ExtractClientIP, traceOpts...).Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("POST /auth/logout", s.authenticated(s.handleLogout))
	mux.Handle("GET /auth/me", s.authenticated(s.handleMe))

	mux.Handle("GET /goals", s.data(s.handleListGoals))
	mux.Handle("POST /goals", s.data(s.handleCreateGoal))
	mux.Handle("GET /goals/stats", s.data(s.handleGoalStats))
	mux.Handle("GET /goals/template", s.data(s.handleGoalTemplate))
	mux.Handle("GET /goals/{id}", s.data(s.handleGetGoal))
	mux.Handle("PUT /goals/{id}", s.data(s.handleUpdateGoal))
	mux.Handle("DELETE /goals/{id}", s.data(s.handleDeleteGoal))

	mux.Handle("GET /transactions", s.data(s.handleListTransactions))
	mux.Handle("POST /transactions", s.data(s.handleCreateTransaction))
	mux.Handle("GET /transactions/summary", s.data(s.handleTransactionSummary))
	mux.Handle("GET /transactions/{id}", s.data(s.handleGetTransaction))
	mux.Handle("PUT /transactions/{id}", s.data(s.handleUpdateTransaction))
	mux.Handle("DELETE /transactions/{id}", s.data(s.handleDeleteTransaction))

	mux.Handle("GET /categories", s.data(s.handleListCategories))
	mux.Handle("POST /categories", s.data(s.handleCreateCategory))
	mux.Handle("GET /categories/{id}", s.data(s.handleGetCategory))
	mux.Handle("PUT /categories/{id}", s.data(s.handleUpdateCategory))
	mux.Handle("DELETE /categories/{id}", s.data(s.handleDeleteCategory))

	mux.Handle("GET /sessions", s.data(s.handleListSessions))
	mux.Handle("POST /sessions", s.data(s.handleCreateSession))
	mux.Handle("POST /sessions/start", s.data(s.handleStartSession))
	mux.Handle("GET /sessions/{id}", s.data(s.handleGetSession))
	mux.Handle("PUT /sessions/{id}", s.data(s.handleUpdateSession))
	mux.Handle("DELETE /sessions/{id}", s.data(s.handleDeleteSession))
	mux.Handle("POST /sessions/{id}/end", s.data(s.handleEndSession))

	mux.Handle("GET /dashboard/stats", s.data(s.handleDashboardStats))
	mux.Handle("GET /dashboard/categories", s.data(s.handleDashboardCategories))

	mux.Handle("GET /state", s.data(s.handleState))
	mux.Handle("POST /state/actions", s.data(s.handleDispatch))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no route for " + r.Method + " " + r.URL.Path).Write(w)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "too many requests, try again later").Write(w)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady pings storage and reports the store version.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true
	if s.storage == nil {
		checks["storage"] = "not_configured"
		ready = false
	} else if err := s.storage.Ping(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		ready = false
	} else {
		checks["storage"] = "ok"
	}

	hits, misses := s.dashCache.Stats()
	data := map[string]any{
		"checks":        checks,
		"storeVersion":  s.store.Version(),
		"dashboardHits": hits,
		"dashboardMiss": misses,
	}
	if !ready {
		ErrorResponse(http.StatusServiceUnavailable, CodeUnavailable, "not ready").Data(data).Write(w)
		return
	}
	OK(data).Write(w)
}
