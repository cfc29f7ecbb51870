// Package sqlite stores records in a single SQLite file using the pure-Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"drivefin/internal/storage"

	_ "modernc.org/sqlite"
)

var _ storage.Backend = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and migrates it.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("SQLite store ready", "path", dbPath)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Create(ctx context.Context, doc storage.Document) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records (kind, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO NOTHING`,
		doc.Kind, doc.ID, doc.Body, doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("create %s %s: %w", doc.Kind, doc.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create %s %s: %w", doc.Kind, doc.ID, err)
	}
	if n == 0 {
		return storage.ErrAlreadyExists
	}
	return nil
}

func (s *Store) Put(ctx context.Context, doc storage.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (kind, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			body = excluded.body,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		doc.Kind, doc.ID, doc.Body, doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("put %s %s: %w", doc.Kind, doc.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, kind storage.Kind, id string) (storage.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT kind, id, body, created_at, updated_at
		FROM records WHERE kind = ? AND id = ?`, kind, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Document{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Document{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, kind storage.Kind, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, kind storage.Kind) ([]storage.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, id, body, created_at, updated_at
		FROM records WHERE kind = ?
		ORDER BY created_at DESC, id ASC`, kind)
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
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get pref %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) SetPref(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set pref %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeletePref(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete pref %s: %w", key, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (storage.Document, error) {
	var (
		doc              storage.Document
		kind             string
		created, updated int64
	)
	if err := row.Scan(&kind, &doc.ID, &doc.Body, &created, &updated); err != nil {
		return storage.Document{}, err
	}
	doc.Kind = storage.Kind(kind)
	doc.CreatedAt = time.Unix(0, created).UTC()
	doc.UpdatedAt = time.Unix(0, updated).UTC()
	return doc, nil
}
