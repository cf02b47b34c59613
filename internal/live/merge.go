package live

import "sync"

// Merger fans several independent live queries into one derived view.
// Every source update replaces that source's cached snapshot and the view is
// recomputed from the latest snapshot of all sources, so it does not matter
// which source delivers first or how often. Nothing is emitted until every
// source has delivered once; a view built from some of the sources would
// misreport what is missing.
type Merger[T any] struct {
	mu      sync.Mutex
	parts   [][]T
	seen    []bool
	combine func(parts [][]T) []T
	emit    func([]T)
	stopped bool
}

// NewMerger returns a merger over n sources.
func NewMerger[T any](n int, combine func(parts [][]T) []T, emit func([]T)) *Merger[T] {
	return &Merger[T]{
		parts:   make([][]T, n),
		seen:    make([]bool, n),
		combine: combine,
		emit:    emit,
	}
}

// Source returns the handler to register for source i.
func (m *Merger[T]) Source(i int) func([]T) {
	return func(items []T) {
		m.update(i, items)
	}
}

func (m *Merger[T]) update(i int, items []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.parts[i] = append([]T(nil), items...)
	m.seen[i] = true
	if !m.ready() {
		return
	}

	parts := make([][]T, len(m.parts))
	copy(parts, m.parts)
	merged := m.combine(parts)
	if m.emit != nil {
		m.emit(merged)
	}
}

// Ready reports whether every source has delivered at least once.
func (m *Merger[T]) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready()
}

func (m *Merger[T]) ready() bool {
	for _, s := range m.seen {
		if !s {
			return false
		}
	}
	return true
}

// Stop drops any later source updates.
func (m *Merger[T]) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}
