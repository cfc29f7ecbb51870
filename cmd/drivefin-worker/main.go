package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"drivefin/internal/cli"
	"drivefin/internal/log"
	"drivefin/internal/metrics"
	"drivefin/internal/sheets"
	gsheet "drivefin/internal/sheets/google"
	memsheet "drivefin/internal/sheets/memory"
	"drivefin/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration invalid", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting drivefin-worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()
	if res.Events == nil {
		logger.Error("AMQP broker unavailable, nothing to consume")
		os.Exit(1)
	}

	var exporter sheets.RecordExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:     cfg.GoogleSpreadsheetID,
			TransactionsSheet: cfg.GoogleTransactionsSheet,
			GoalsSheet:        cfg.GoogleGoalsSheet,
			CredentialsJSON:   cfg.GoogleServiceAccountJSON,
			CredentialsFile:   cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.WithComponent(log.ComponentSheets).Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = memsheet.New()
		logger.WithComponent(log.ComponentSheets).Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting in memory")
	}

	m := metrics.New()
	exportWorker := worker.NewExportWorker(res.Storage, exporter, worker.Config{
		Interval:  cfg.ExportInterval,
		BatchSize: cfg.ExportBatchSize,
	}, worker.WithLogger(logger.WithComponent(log.ComponentWorker).Slog()), worker.WithObserver(m))

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := exportWorker.Stop(ctx); err != nil {
			logger.Error("Export worker stop failed", log.FieldError, err)
		}
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Error("Metrics server shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return res.Events.Consume(gctx, exportWorker.HandleEvent)
	})
	g.Go(func() error {
		return exportWorker.Start(gctx)
	})
	g.Go(func() error {
		logger.Info("Serving worker metrics", "addr", cfg.Addr())
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", log.FieldError, err)
		cancel()
		os.Exit(1)
	}

	if runCtx.Err() == nil {
		logger.Warn("Message consumption ended without a shutdown signal")
		return
	}
	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped gracefully")
}
