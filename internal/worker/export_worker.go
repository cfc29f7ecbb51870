package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"drivefin/internal/amqp"
	"drivefin/internal/core"
	"drivefin/internal/sheets"
	"drivefin/internal/storage"
)

// Config holds the export worker settings.
type Config struct {
	// Interval between full re-exports (default: 15m). Zero disables them.
	Interval time.Duration

	// BatchSize is how many records are exported before checking for
	// cancellation (default: 50).
	BatchSize int
}

func DefaultConfig() Config {
	return Config{
		Interval:  15 * time.Minute,
		BatchSize: 50,
	}
}

// Observer is notified of every export attempt.
type Observer interface {
	RecordExport(kind storage.Kind, err error)
}

// Result summarizes a full export run.
type Result struct {
	Exported int
	Failed   int
}

// ExportWorker mirrors transactions and goals from storage into a sheet. It
// reacts to record events and periodically re-exports everything as a
// backup for lost messages.
type ExportWorker struct {
	transactions *storage.Collection[core.Transaction]
	goals        *storage.Collection[core.Goal]
	exporter     sheets.RecordExporter
	config       Config
	logger       *slog.Logger
	observer     Observer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type Option func(*ExportWorker)

func WithLogger(l *slog.Logger) Option {
	return func(w *ExportWorker) { w.logger = l }
}

func WithObserver(o Observer) Option {
	return func(w *ExportWorker) { w.observer = o }
}

func NewExportWorker(records storage.Records, exporter sheets.RecordExporter, cfg Config, opts ...Option) *ExportWorker {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Interval < 0 {
		cfg.Interval = def.Interval
	}
	w := &ExportWorker{
		transactions: storage.Transactions(records),
		goals:        storage.Goals(records),
		exporter:     exporter,
		config:       cfg,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleEvent exports the record named by e, or removes its row when the
// record was deleted. Kinds that are not exported are acknowledged and
// skipped.
func (w *ExportWorker) HandleEvent(ctx context.Context, e amqp.RecordEvent) error {
	if e.Kind != storage.KindTransactions && e.Kind != storage.KindGoals {
		w.logger.DebugContext(ctx, "Skipping event for kind without export", "kind", e.Kind, "id", e.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing record event",
		"kind", e.Kind,
		"id", e.ID,
		"op", e.Op)

	if e.Op == amqp.OpDelete {
		return w.remove(ctx, e.Kind, e.ID)
	}

	var err error
	switch e.Kind {
	case storage.KindTransactions:
		err = w.exportTransaction(ctx, e.ID)
	case storage.KindGoals:
		err = w.exportGoal(ctx, e.ID)
	}
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted after the upsert event was published.
		return w.remove(ctx, e.Kind, e.ID)
	}
	return err
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id string) error {
	t, err := w.transactions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", id, err)
	}
	err = w.exporter.ExportTransaction(ctx, t)
	w.observe(storage.KindTransactions, err)
	if err != nil {
		return fmt.Errorf("export transaction %s: %w", id, err)
	}
	return nil
}

func (w *ExportWorker) exportGoal(ctx context.Context, id string) error {
	g, err := w.goals.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get goal %s: %w", id, err)
	}
	err = w.exporter.ExportGoal(ctx, g)
	w.observe(storage.KindGoals, err)
	if err != nil {
		return fmt.Errorf("export goal %s: %w", id, err)
	}
	return nil
}

func (w *ExportWorker) remove(ctx context.Context, kind storage.Kind, id string) error {
	if err := w.exporter.Remove(ctx, kind, id); err != nil {
		w.logger.ErrorContext(ctx, "Failed to remove exported row", "kind", kind, "id", id, "error", err)
		return fmt.Errorf("remove %s %s: %w", kind, id, err)
	}
	w.logger.InfoContext(ctx, "Removed exported row", "kind", kind, "id", id)
	return nil
}

// ExportAll re-exports every transaction and goal. Individual failures are
// counted and logged; only storage or context errors abort the run.
func (w *ExportWorker) ExportAll(ctx context.Context) (Result, error) {
	var res Result

	txs, err := w.transactions.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list transactions: %w", err)
	}
	for i, t := range txs {
		if i%w.config.BatchSize == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		err := w.exporter.ExportTransaction(ctx, t)
		w.observe(storage.KindTransactions, err)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to export transaction", "id", t.ID, "error", err)
			res.Failed++
			continue
		}
		res.Exported++
	}

	gs, err := w.goals.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list goals: %w", err)
	}
	for i, g := range gs {
		if i%w.config.BatchSize == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		err := w.exporter.ExportGoal(ctx, g)
		w.observe(storage.KindGoals, err)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to export goal", "id", g.ID, "error", err)
			res.Failed++
			continue
		}
		res.Exported++
	}

	w.logger.InfoContext(ctx, "Full export completed",
		"exported", res.Exported,
		"failed", res.Failed)
	return res, nil
}

func (w *ExportWorker) observe(kind storage.Kind, err error) {
	if w.observer != nil {
		w.observer.RecordExport(kind, err)
	}
}

// Start runs a full export now and then every Interval until Stop is called
// or ctx ends. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	w.logger.InfoContext(ctx, "Export worker started",
		"interval", w.config.Interval,
		"batch_size", w.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for the current run to finish.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Export worker stopped gracefully")
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	if _, err := w.ExportAll(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup export failed", "error", err)
	}
	if w.config.Interval == 0 {
		select {
		case <-w.stopCh:
		case <-ctx.Done():
		}
		return
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ExportAll(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}
