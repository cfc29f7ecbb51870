package backend

import (
	"context"

	"drivefin/internal/amqp"
	"drivefin/internal/storage"
)

// CleanupFunc releases the resources of a created backend.
type CleanupFunc func() error

// Result holds the storage backend, the optional event client and the
// cleanup for both.
type Result struct {
	Storage storage.Backend
	// Events is nil when no AMQP URL is configured or the broker is down.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	// SeedFile is applied when the backend holds no records yet.
	SeedFile string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
