// Package seed loads demo data from YAML into storage.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"drivefin/internal/core"
	"drivefin/internal/storage"
)

//go:embed default.yaml
var defaultSeed []byte

type (
	File struct {
		Categories   []Category    `yaml:"categories"`
		Goals        []Goal        `yaml:"goals"`
		Transactions []Transaction `yaml:"transactions"`
		Sessions     []Session     `yaml:"sessions"`
	}

	Category struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Kind  string `yaml:"kind"`
		Color string `yaml:"color"`
		Icon  string `yaml:"icon"`
	}

	Goal struct {
		ID          string  `yaml:"id"`
		Title       string  `yaml:"title"`
		Description string  `yaml:"description"`
		Target      float64 `yaml:"target"`
		Current     float64 `yaml:"current"`
		Deadline    string  `yaml:"deadline"`
		Category    string  `yaml:"category"`
		Status      string  `yaml:"status"`
	}

	Transaction struct {
		ID          string  `yaml:"id"`
		Kind        string  `yaml:"kind"`
		Amount      float64 `yaml:"amount"`
		Description string  `yaml:"description"`
		Category    string  `yaml:"category"`
		Date        string  `yaml:"date"`
	}

	Session struct {
		ID          string `yaml:"id"`
		Kind        string `yaml:"kind"`
		Description string `yaml:"description"`
		Start       string `yaml:"start"`
		End         string `yaml:"end"`
	}

	// Counts reports how many records Apply wrote per kind.
	Counts struct {
		Categories   int
		Goals        int
		Transactions int
		Sessions     int
	}
)

func (c Counts) Total() int {
	return c.Categories + c.Goals + c.Transactions + c.Sessions
}

// Parse decodes a seed document. Unknown fields are rejected.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	return f, nil
}

// LoadFile parses the seed file at path.
func LoadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open seed: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Default returns the bundled demo data.
func Default() File {
	var out File
	if err := yaml.Unmarshal(defaultSeed, &out); err != nil {
		panic(fmt.Sprintf("bundled seed: %v", err))
	}
	return out
}

// Apply converts f to domain records and writes them with Put, so running it
// twice with fixed ids is idempotent. Records without an id get a new uuid.
// Every record is validated before anything is written.
func Apply(ctx context.Context, records storage.Records, f File, now time.Time) (Counts, error) {
	b, err := f.build(now)
	if err != nil {
		return Counts{}, err
	}

	var c Counts
	if err := putAll(ctx, storage.Categories(records), b.categories, &c.Categories); err != nil {
		return c, err
	}
	if err := putAll(ctx, storage.Goals(records), b.goals, &c.Goals); err != nil {
		return c, err
	}
	if err := putAll(ctx, storage.Transactions(records), b.transactions, &c.Transactions); err != nil {
		return c, err
	}
	if err := putAll(ctx, storage.Sessions(records), b.sessions, &c.Sessions); err != nil {
		return c, err
	}
	return c, nil
}

func putAll[T any](ctx context.Context, col *storage.Collection[T], items []T, n *int) error {
	for _, v := range items {
		if err := col.Put(ctx, v); err != nil {
			return fmt.Errorf("seed %s: %w", col.Kind(), err)
		}
		*n++
	}
	return nil
}

type built struct {
	categories   []core.Category
	goals        []core.Goal
	transactions []core.Transaction
	sessions     []core.Session
}

func (f File) build(now time.Time) (built, error) {
	var b built
	// Stagger creation times so newest-first listing keeps file order.
	stamp := func(i, n int) time.Time {
		return now.Add(-time.Duration(n-i) * time.Second).UTC()
	}

	for i, c := range f.Categories {
		t := stamp(i, len(f.Categories))
		cat := core.Category{
			ID: idOr(c.ID), Name: c.Name, Kind: core.EntryKind(c.Kind),
			Color: c.Color, Icon: c.Icon, Active: true, CreatedAt: t, UpdatedAt: t,
		}
		if err := cat.Validate(); err != nil {
			return b, fmt.Errorf("category %d (%s): %w", i, c.Name, err)
		}
		b.categories = append(b.categories, cat)
	}

	for i, g := range f.Goals {
		deadline, err := core.ParseDate(g.Deadline)
		if err != nil {
			return b, fmt.Errorf("goal %d (%s): %w", i, g.Title, err)
		}
		t := stamp(i, len(f.Goals))
		goal := core.Goal{
			ID: idOr(g.ID), Title: g.Title, Description: g.Description,
			TargetValue: g.Target, CurrentValue: g.Current, Deadline: deadline,
			Category:  core.GoalCategory(orDefault(g.Category, string(core.CategoryOther))),
			Status:    core.GoalStatus(orDefault(g.Status, string(core.GoalActive))),
			CreatedAt: t, UpdatedAt: t,
		}
		if err := goal.Validate(); err != nil {
			return b, fmt.Errorf("goal %d (%s): %w", i, g.Title, err)
		}
		b.goals = append(b.goals, goal)
	}

	for i, tx := range f.Transactions {
		date, err := core.ParseDate(tx.Date)
		if err != nil {
			return b, fmt.Errorf("transaction %d: %w", i, err)
		}
		t := stamp(i, len(f.Transactions))
		txn := core.Transaction{
			ID: idOr(tx.ID), Kind: core.EntryKind(tx.Kind), Amount: tx.Amount,
			Description: tx.Description, Category: tx.Category, Date: date,
			CreatedAt: t, UpdatedAt: t,
		}
		if err := txn.Validate(); err != nil {
			return b, fmt.Errorf("transaction %d (%s): %w", i, tx.Description, err)
		}
		b.transactions = append(b.transactions, txn)
	}

	for i, s := range f.Sessions {
		start, err := time.Parse(time.RFC3339, s.Start)
		if err != nil {
			return b, fmt.Errorf("session %d: start: %w", i, err)
		}
		t := stamp(i, len(f.Sessions))
		sess := core.Session{
			ID: idOr(s.ID), Kind: core.SessionKind(orDefault(s.Kind, string(core.SessionWork))),
			Description: s.Description, StartedAt: start, Active: true,
			CreatedAt: t, UpdatedAt: t,
		}
		if s.End != "" {
			end, err := time.Parse(time.RFC3339, s.End)
			if err != nil {
				return b, fmt.Errorf("session %d: end: %w", i, err)
			}
			minutes := int(end.Sub(start).Minutes())
			sess.EndedAt, sess.DurationMinutes, sess.Active = &end, &minutes, false
		}
		if err := sess.Validate(); err != nil {
			return b, fmt.Errorf("session %d: %w", i, err)
		}
		b.sessions = append(b.sessions, sess)
	}
	return b, nil
}

func idOr(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
