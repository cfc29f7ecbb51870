package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"drivefin/internal/amqp"
	"drivefin/internal/auth"
	"drivefin/internal/cli"
	apphttp "drivefin/internal/http"
	"drivefin/internal/log"
	"drivefin/internal/metrics"
	"drivefin/internal/services"
	"drivefin/internal/session"
	"drivefin/internal/store"
)

// countingPublisher records the outcome of every event publication.
type countingPublisher struct {
	client  *amqp.Client
	metrics *metrics.Metrics
}

func (p countingPublisher) Publish(ctx context.Context, e amqp.RecordEvent) error {
	err := p.client.Publish(ctx, e)
	p.metrics.RecordPublish(err)
	return err
}

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx := context.Background()
	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	m := metrics.New()
	st := store.New(store.InitialState())
	unsubscribe := st.Subscribe(m.StoreListener(st))
	defer unsubscribe()

	ledgerOpts := []services.LedgerOption{
		services.WithLogger(logger.WithComponent(log.ComponentLedger).Slog()),
	}
	if res.Events != nil {
		ledgerOpts = append(ledgerOpts, services.WithPublisher(countingPublisher{client: res.Events, metrics: m}))
	}
	ledger := services.NewLedger(res.Storage, st, ledgerOpts...)

	sessions := session.NewManager(res.Storage, st, logger.WithComponent(log.ComponentSession).Slog())
	if err := sessions.Restore(ctx, time.Now()); err != nil {
		logger.Warn("Session restore failed", log.FieldError, err)
	}
	if err := sessions.LoadTheme(ctx); err != nil {
		logger.Warn("Theme load failed", log.FieldError, err)
	}
	stopTheme := sessions.PersistTheme(ctx)
	defer stopTheme()

	if err := ledger.Load(ctx); err != nil {
		logger.Error("Failed to load records", log.FieldError, err)
		os.Exit(1)
	}
	state := st.State()
	logger.Info("Records loaded",
		"transactions", len(state.Transactions),
		"goals", len(state.Goals),
		"categories", len(state.Categories),
		"sessions", len(state.Sessions))

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authSvc := services.NewAuthService(res.Storage, tokens, sessions, services.WithLoader(ledger.Load))

	srv := apphttp.NewServer(apphttp.Config{
		Addr:                cfg.Addr(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMinute:  cfg.RateLimitPerMinute,
		CacheSize:           cfg.CacheSize,
		CacheTTL:            cfg.CacheTTL,
		RequireSubscription: cfg.RequireSubscription,
	}, apphttp.Deps{
		Store:   st,
		Ledger:  ledger,
		Auth:    authSvc,
		Storage: res.Storage,
		Metrics: m,
		Logger:  logger,
	})

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting drivefin server", "addr", cfg.Addr(), "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "addr", cfg.Addr())
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}
