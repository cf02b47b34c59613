// Package memstore is an in-memory document store with the same method set
// as storage.Client. Live queries deliver synchronously: the first snapshot
// arrives before Watch* returns and every write delivers fresh snapshots
// before it returns. Handlers run outside the store lock but must not stop
// their own subscription.
package memstore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

type Store struct {
	mu sync.Mutex

	users         map[string]models.User
	posts         map[string]models.Post
	comments      map[string]models.Comment
	likes         map[string]models.Like
	connections   map[string]models.Connection
	messages      map[string]models.Message
	jobs          map[string]models.Job
	savedJobs     map[string]models.SavedJob
	notifications map[string]models.Notification

	version     uint64
	nextWatcher int
	watchers    map[int]*watcher

	faults map[string]*fault
	calls  map[string]int
}

type fault struct {
	err       error
	remaining int // <= 0 means every call fails
}

func New() *Store {
	return &Store{
		users:         make(map[string]models.User),
		posts:         make(map[string]models.Post),
		comments:      make(map[string]models.Comment),
		likes:         make(map[string]models.Like),
		connections:   make(map[string]models.Connection),
		messages:      make(map[string]models.Message),
		jobs:          make(map[string]models.Job),
		savedJobs:     make(map[string]models.SavedJob),
		notifications: make(map[string]models.Notification),
		watchers:      make(map[int]*watcher),
		faults:        make(map[string]*fault),
		calls:         make(map[string]int),
	}
}

// Close stops every live query.
func (s *Store) Close() error {
	s.mu.Lock()
	ws := slices.Collect(maps.Values(s.watchers))
	clear(s.watchers)
	s.mu.Unlock()
	for _, w := range ws {
		w.stop()
	}
	return nil
}

// InjectError makes every later call to op fail with err. A nil err clears it.
func (s *Store) InjectError(op string, err error) {
	s.InjectErrorN(op, err, 0)
}

// InjectErrorN makes the next n calls to op fail with err.
func (s *Store) InjectErrorN(op string, err error, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = &fault{err: err, remaining: n}
}

// Calls reports how many times op has been invoked, failed calls included.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records a call to op and returns its injected error, if any. Callers hold s.mu.
func (s *Store) enter(op string) error {
	s.calls[op]++
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			delete(s.faults, op)
		}
	}
	return f.err
}

// watcher is one live query. view runs under the store lock and returns the
// delivery to make once the lock is released.
type watcher struct {
	mu        sync.Mutex
	stopped   bool
	delivered uint64
	view      func() func()
}

func (w *watcher) deliver(version uint64, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || version < w.delivered {
		return
	}
	w.delivered = version
	fn()
}

func (w *watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
}

type delivery struct {
	w       *watcher
	version uint64
	fn      func()
}

type pending []delivery

func (p pending) flush() {
	for _, d := range p {
		d.w.deliver(d.version, d.fn)
	}
}

// changed bumps the version and snapshots every live query. Callers hold s.mu
// and flush the result after unlocking.
func (s *Store) changed() pending {
	s.version++
	ids := slices.Sorted(maps.Keys(s.watchers))
	out := make(pending, 0, len(ids))
	for _, id := range ids {
		w := s.watchers[id]
		out = append(out, delivery{w: w, version: s.version, fn: w.view()})
	}
	return out
}

// watch registers a live query. An injected error for op ends the query
// before its first snapshot and is reported through the context's handler.
func (s *Store) watch(ctx context.Context, op string, view func() func()) live.Subscription {
	w := &watcher{view: view}

	s.mu.Lock()
	if err := s.enter(op); err != nil {
		s.mu.Unlock()
		live.ReportError(ctx, err)
		return live.Nop
	}
	s.nextWatcher++
	id := s.nextWatcher
	s.watchers[id] = w
	first := delivery{w: w, version: s.version, fn: view()}
	s.mu.Unlock()

	sub := live.Once(func() {
		w.stop()
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	})
	stopOnDone := context.AfterFunc(ctx, sub.Stop)

	pending{first}.flush()
	return live.Once(func() {
		stopOnDone()
		sub.Stop()
	})
}

// collect returns the values of m accepted by keep, ordered by document ID.
func collect[T any](m map[string]T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if keep == nil || keep(m[k]) {
			out = append(out, m[k])
		}
	}
	return out
}

func byTime(a, b time.Time) int {
	return a.Compare(b)
}

var errTooManyValues = errors.New("membership query exceeds value limit")
