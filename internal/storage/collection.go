package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"drivefin/internal/core"
)

// Collection gives typed access to the documents of one Kind.
type Collection[T any] struct {
	records Records
	kind    Kind
	meta    func(T) (id string, created, updated time.Time)
}

// NewCollection wraps records for kind. meta extracts the indexed fields.
func NewCollection[T any](records Records, kind Kind, meta func(T) (string, time.Time, time.Time)) *Collection[T] {
	return &Collection[T]{records: records, kind: kind, meta: meta}
}

func Transactions(r Records) *Collection[core.Transaction] {
	return NewCollection(r, KindTransactions, func(t core.Transaction) (string, time.Time, time.Time) {
		return t.ID, t.CreatedAt, t.UpdatedAt
	})
}

func Goals(r Records) *Collection[core.Goal] {
	return NewCollection(r, KindGoals, func(g core.Goal) (string, time.Time, time.Time) {
		return g.ID, g.CreatedAt, g.UpdatedAt
	})
}

func Categories(r Records) *Collection[core.Category] {
	return NewCollection(r, KindCategories, func(c core.Category) (string, time.Time, time.Time) {
		return c.ID, c.CreatedAt, c.UpdatedAt
	})
}

func Sessions(r Records) *Collection[core.Session] {
	return NewCollection(r, KindSessions, func(s core.Session) (string, time.Time, time.Time) {
		return s.ID, s.CreatedAt, s.UpdatedAt
	})
}

func (c *Collection[T]) Kind() Kind { return c.kind }

func (c *Collection[T]) document(v T) (Document, error) {
	id, created, updated := c.meta(v)
	if id == "" {
		return Document{}, fmt.Errorf("store %s: empty id", c.kind)
	}
	body, err := json.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("encode %s %s: %w", c.kind, id, err)
	}
	return Document{Kind: c.kind, ID: id, Body: body, CreatedAt: created, UpdatedAt: updated}, nil
}

// Create stores v and fails with ErrAlreadyExists when its id is taken.
func (c *Collection[T]) Create(ctx context.Context, v T) error {
	doc, err := c.document(v)
	if err != nil {
		return err
	}
	return c.records.Create(ctx, doc)
}

// Put stores v, replacing any record with the same id.
func (c *Collection[T]) Put(ctx context.Context, v T) error {
	doc, err := c.document(v)
	if err != nil {
		return err
	}
	return c.records.Put(ctx, doc)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	doc, err := c.records.Get(ctx, c.kind, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(doc.Body, &v); err != nil {
		return v, fmt.Errorf("decode %s %s: %w", c.kind, id, err)
	}
	return v, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.records.Delete(ctx, c.kind, id)
}

// List returns every record, newest first.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	docs, err := c.records.List(ctx, c.kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc.Body, &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", c.kind, doc.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}
