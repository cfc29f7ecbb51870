package memory

import (
	"context"
	"testing"

	"drivefin/internal/core"
	"drivefin/internal/storage"
)

func TestExporterUpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	e := New()

	if err := e.ExportTransaction(ctx, core.Transaction{ID: "t1", Amount: 10}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := e.ExportTransaction(ctx, core.Transaction{ID: "t1", Amount: 20}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := e.ExportGoal(ctx, core.Goal{ID: "g1"}); err != nil {
		t.Fatalf("export goal: %v", err)
	}

	got, ok := e.Transaction("t1")
	if !ok || got.Amount != 20 {
		t.Fatalf("expected overwritten row, got %+v ok=%v", got, ok)
	}
	if txs, gs := e.Len(); txs != 1 || gs != 1 {
		t.Fatalf("unexpected len: %d transactions, %d goals", txs, gs)
	}
	if e.Exports() != 3 {
		t.Fatalf("expected 3 exports, got %d", e.Exports())
	}

	if err := e.Remove(ctx, storage.KindGoals, "g1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := e.Remove(ctx, storage.KindGoals, "missing"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if _, ok := e.Goal("g1"); ok {
		t.Fatal("goal still exported after remove")
	}
}
