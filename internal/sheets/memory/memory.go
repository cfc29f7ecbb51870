package memory

import (
	"context"
	"sync"

	"drivefin/internal/core"
	ports "drivefin/internal/sheets"
	"drivefin/internal/storage"
)

// Exporter keeps exported rows in memory. It backs the worker when no
// spreadsheet is configured and serves as a fake in tests.
type Exporter struct {
	mu           sync.Mutex
	transactions map[string]core.Transaction
	goals        map[string]core.Goal
	exports      int
}

var _ ports.RecordExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{
		transactions: map[string]core.Transaction{},
		goals:        map[string]core.Goal{},
	}
}

func (e *Exporter) ExportTransaction(_ context.Context, t core.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transactions[t.ID] = t
	e.exports++
	return nil
}

func (e *Exporter) ExportGoal(_ context.Context, g core.Goal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.goals[g.ID] = g
	e.exports++
	return nil
}

func (e *Exporter) Remove(_ context.Context, kind storage.Kind, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch kind {
	case storage.KindTransactions:
		delete(e.transactions, id)
	case storage.KindGoals:
		delete(e.goals, id)
	}
	return nil
}

// Transaction returns the exported row for id.
func (e *Exporter) Transaction(id string) (core.Transaction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.transactions[id]
	return t, ok
}

func (e *Exporter) Goal(id string) (core.Goal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.goals[id]
	return g, ok
}

// Len reports the number of exported transaction and goal rows.
func (e *Exporter) Len() (transactions, goals int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.transactions), len(e.goals)
}

// Exports counts every export call, including overwrites.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
