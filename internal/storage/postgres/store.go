// Package postgres stores records in PostgreSQL as JSONB documents.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"drivefin/internal/storage"
)

// Ensure Store satisfies the storage.Backend interface at compile time.
var _ storage.Backend = (*Store)(nil)

// Store provides Postgres-backed persistence for records and prefs.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL and runs migrations.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			body JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (kind, id)
		);`,
		`CREATE INDEX IF NOT EXISTS records_kind_created_idx ON records (kind, created_at DESC, id);`,
		`CREATE TABLE IF NOT EXISTS prefs (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Create inserts a new document row.
func (s *Store) Create(ctx context.Context, doc storage.Document) error {
	const query = `
		INSERT INTO records (kind, id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5);`
	_, err := s.pool.Exec(ctx, query, string(doc.Kind), doc.ID, doc.Body, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create %s %s: %w", doc.Kind, doc.ID, err)
	}
	return nil
}

// Put inserts or replaces a document row.
func (s *Store) Put(ctx context.Context, doc storage.Document) error {
	const query = `
		INSERT INTO records (kind, id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind, id) DO UPDATE
		SET body = EXCLUDED.body, created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at;`
	if _, err := s.pool.Exec(ctx, query, string(doc.Kind), doc.ID, doc.Body, doc.CreatedAt, doc.UpdatedAt); err != nil {
		return fmt.Errorf("put %s %s: %w", doc.Kind, doc.ID, err)
	}
	return nil
}

// Get fetches one document.
func (s *Store) Get(ctx context.Context, kind storage.Kind, id string) (storage.Document, error) {
	const query = `
	SELECT kind, id, body, created_at, updated_at
	FROM records
	WHERE kind = $1 AND id = $2;
	`
	doc, err := scanDocument(s.pool.QueryRow(ctx, query, string(kind), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Document{}, storage.ErrNotFound
		}
		return storage.Document{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return doc, nil
}

// Delete removes one document.
func (s *Store) Delete(ctx context.Context, kind storage.Kind, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM records WHERE kind = $1 AND id = $2;`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns every document of kind, newest first.
func (s *Store) List(ctx context.Context, kind storage.Kind) ([]storage.Document, error) {
	const query = `
	SELECT kind, id, body, created_at, updated_at
	FROM records
	WHERE kind = $1
	ORDER BY created_at DESC, id ASC;
	`
	rows, err := s.pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	out := []storage.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

func (s *Store) GetPref(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.pool.QueryRow(ctx, `SELECT value FROM prefs WHERE key = $1;`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get pref %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) SetPref(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO prefs (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set pref %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeletePref(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM prefs WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("delete pref %s: %w", key, err)
	}
	return nil
}

func scanDocument(row pgx.Row) (storage.Document, error) {
	var (
		doc  storage.Document
		kind string
	)
	if err := row.Scan(&kind, &doc.ID, &doc.Body, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return storage.Document{}, err
	}
	doc.Kind = storage.Kind(kind)
	doc.CreatedAt = doc.CreatedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	return doc, nil
}
