// Package storage defines the persistence ports shared by every backend.
//
// Records are stored as JSON documents grouped by Kind. Backends only index
// the id and timestamps, so adding a field to a record never needs a schema
// change.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("record already exists")
)

// Kind groups documents of the same record type.
type Kind string

const (
	KindTransactions Kind = "transactions"
	KindGoals        Kind = "goals"
	KindCategories   Kind = "categories"
	KindSessions     Kind = "sessions"
	KindUsers        Kind = "users"
)

// Kinds lists every known Kind.
var Kinds = []Kind{KindTransactions, KindGoals, KindCategories, KindSessions, KindUsers}

func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Document is a stored record body with the metadata backends index.
type Document struct {
	Kind      Kind
	ID        string
	Body      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ports for persistence adapters.
type (
	// Records stores JSON documents. List returns documents newest first by
	// CreatedAt, ties broken by ID.
	Records interface {
		Create(ctx context.Context, doc Document) error
		Put(ctx context.Context, doc Document) error
		Get(ctx context.Context, kind Kind, id string) (Document, error)
		Delete(ctx context.Context, kind Kind, id string) error
		List(ctx context.Context, kind Kind) ([]Document, error)
	}

	// Prefs is a string key-value store for client session keys.
	Prefs interface {
		GetPref(ctx context.Context, key string) (value string, ok bool, err error)
		SetPref(ctx context.Context, key, value string) error
		DeletePref(ctx context.Context, key string) error
	}

	// Backend is a full storage implementation.
	Backend interface {
		Records
		Prefs
		Ping(ctx context.Context) error
		Close() error
	}
)
