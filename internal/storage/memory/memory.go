// Package memory is an in-process storage backend used for development and
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"drivefin/internal/storage"
)

var _ storage.Backend = (*Store)(nil)

type Store struct {
	mu    sync.RWMutex
	docs  map[storage.Kind]map[string]storage.Document
	prefs map[string]string
}

func New() *Store {
	return &Store{
		docs:  make(map[storage.Kind]map[string]storage.Document),
		prefs: make(map[string]string),
	}
}

func (s *Store) Create(_ context.Context, doc storage.Document) error {
	if !doc.Kind.Valid() {
		return fmt.Errorf("create: unknown kind %q", doc.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.Kind][doc.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.put(doc)
	return nil
}

func (s *Store) Put(_ context.Context, doc storage.Document) error {
	if !doc.Kind.Valid() {
		return fmt.Errorf("put: unknown kind %q", doc.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(doc)
	return nil
}

func (s *Store) put(doc storage.Document) {
	byID, ok := s.docs[doc.Kind]
	if !ok {
		byID = make(map[string]storage.Document)
		s.docs[doc.Kind] = byID
	}
	doc.Body = slices.Clone(doc.Body)
	byID[doc.ID] = doc
}

func (s *Store) Get(_ context.Context, kind storage.Kind, id string) (storage.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[kind][id]
	if !ok {
		return storage.Document{}, storage.ErrNotFound
	}
	doc.Body = slices.Clone(doc.Body)
	return doc, nil
}

func (s *Store) Delete(_ context.Context, kind storage.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[kind][id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.docs[kind], id)
	return nil
}

func (s *Store) List(_ context.Context, kind storage.Kind) ([]storage.Document, error) {
	s.mu.RLock()
	out := make([]storage.Document, 0, len(s.docs[kind]))
	for _, doc := range s.docs[kind] {
		doc.Body = slices.Clone(doc.Body)
		out = append(out, doc)
	}
	s.mu.RUnlock()
	storage.SortNewestFirst(out)
	return out, nil
}

func (s *Store) GetPref(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.prefs[key]
	return v, ok, nil
}

func (s *Store) SetPref(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key] = value
	return nil
}

func (s *Store) DeletePref(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prefs, key)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error                { return nil }
