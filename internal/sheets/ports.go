package sheets

import (
	"context"

	"drivefin/internal/core"
	"drivefin/internal/storage"
)

// Ports for outbound adapters.
type (
	// RecordExporter mirrors ledger records into an external sheet. Export
	// calls are upserts keyed by record id.
	RecordExporter interface {
		ExportTransaction(ctx context.Context, t core.Transaction) error
		ExportGoal(ctx context.Context, g core.Goal) error
		// Remove deletes the row for id. Missing rows are not an error.
		Remove(ctx context.Context, kind storage.Kind, id string) error
	}
)
