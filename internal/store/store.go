package store

import (
	"context"
	"log/slog"
	"sync"
)

// Listener is notified after every dispatch with the action and the state
// it produced.
type Listener func(state AppState, action Action)

type subscription struct {
	id int
	fn Listener
}

// Store holds the current AppState and serialises every change through
// Reduce. It is safe for concurrent use.
type Store struct {
	dispatchMu sync.Mutex

	mu          sync.RWMutex
	state       AppState
	version     uint64
	nextID      int
	subscribers []subscription

	logger *slog.Logger
}

type Option func(*Store)

// WithLogger sets the logger used for dispatch tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store starting from initial.
func New(initial AppState, opts ...Option) *Store {
	s := &Store{
		state:  initial,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Version is incremented once per dispatch.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Dispatch applies a and notifies subscribers, in registration order, with
// the resulting state. Dispatches are processed one at a time: a dispatch and
// its notifications complete before the next dispatch starts. Listeners run
// on the dispatching goroutine and must not call Dispatch themselves.
func (s *Store) Dispatch(a Action) AppState {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next := Reduce(s.state, a)
	s.state = next
	s.version++
	version := s.version
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "action dispatched",
		slog.String("action", string(a.Type())),
		slog.Uint64("version", version),
	)

	for _, sub := range subs {
		sub.fn(next, a)
	}
	return next
}

// Subscribe registers fn and returns a function that removes it. Calling
// the returned function more than once is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}
