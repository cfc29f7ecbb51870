package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"drivefin/internal/amqp"
	"drivefin/internal/seed"
	"drivefin/internal/storage"
	"drivefin/internal/storage/memory"
	"drivefin/internal/storage/postgres"
	"drivefin/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger, now: time.Now}
}

// Create opens the storage backend, seeds it when configured and connects
// the event client. A broker that cannot be reached is logged and skipped.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	st, err := f.openStorage(ctx, config)
	if err != nil {
		return nil, err
	}

	if config.SeedFile != "" {
		if err := f.seedIfEmpty(ctx, st, config.SeedFile); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	res := &Result{Storage: st}
	if config.AMQPURL != "" {
		events, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			res.Events = events
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		if res.Events != nil {
			errs = append(errs, res.Events.Close())
		}
		errs = append(errs, st.Close())
		return errors.Join(errs...)
	}
	return res, nil
}

func (f *DefaultFactory) openStorage(ctx context.Context, config Config) (storage.Backend, error) {
	switch config.Type {
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil
	case SQLiteBackend:
		st, err := sqlite.Open(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return st, nil
	case PostgresBackend:
		st, err := postgres.Open(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres storage: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) seedIfEmpty(ctx context.Context, st storage.Records, path string) error {
	for _, k := range storage.Kinds {
		docs, err := st.List(ctx, k)
		if err != nil {
			return fmt.Errorf("check existing %s: %w", k, err)
		}
		if len(docs) > 0 {
			f.logger.Info("Storage already holds records, skipping seed", "seed_file", path)
			return nil
		}
	}

	file, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	counts, err := seed.Apply(ctx, st, file, f.now())
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	f.logger.Info("Seeded storage",
		"seed_file", path,
		"records", counts.Total())
	return nil
}
