// Package runstore keeps recent allocation runs so they can be queried after
// the fact. MemoryStore is the default; a SQLite implementation lives in
// infra/history.
package runstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
)

// DefaultCapacity bounds the number of retained runs.
const DefaultCapacity = 100

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Strategy string
	Since    time.Time
	Limit    int
}

// ErrNotFound is returned by Get for unknown run IDs.
var ErrNotFound = errors.New("run not found")

// Store retains runs.
type Store interface {
	coremetrics.AllocationSink
	Get(ctx context.Context, runID string) (coremetrics.RunEvent, error)
	List(ctx context.Context, f Filter) ([]coremetrics.RunEvent, error)
}

// Match reports whether ev passes the strategy and since filters.
func (f Filter) Match(ev coremetrics.RunEvent) bool {
	if f.Strategy != "" && ev.Strategy != f.Strategy {
		return false
	}
	return f.Since.IsZero() || !ev.Finished.Before(f.Since)
}

// MemoryStore keeps the most recent runs up to a fixed capacity, evicting
// the oldest insert first.
type MemoryStore struct {
	mu    sync.RWMutex
	cap   int
	order []string
	data  map[string]coremetrics.RunEvent
}

// NewMemoryStore returns a store holding up to capacity runs. Non-positive
// capacities use DefaultCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{cap: capacity, data: map[string]coremetrics.RunEvent{}}
}

// RecordRun stores ev, replacing a run with the same ID.
func (s *MemoryStore) RecordRun(ev coremetrics.RunEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[ev.RunID]; !ok {
		s.order = append(s.order, ev.RunID)
	}
	s.data[ev.RunID] = ev
	for len(s.order) > s.cap {
		delete(s.data, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, runID string) (coremetrics.RunEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.data[runID]
	if !ok {
		return coremetrics.RunEvent{}, ErrNotFound
	}
	return ev, nil
}

// List returns matching runs, most recently finished first.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]coremetrics.RunEvent, error) {
	s.mu.RLock()
	res := make([]coremetrics.RunEvent, 0, len(s.data))
	for _, ev := range s.data {
		if f.Match(ev) {
			res = append(res, ev)
		}
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Finished.Equal(res[j].Finished) {
			return res[i].Finished.After(res[j].Finished)
		}
		return res[i].RunID < res[j].RunID
	})
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

// Len reports the number of retained runs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
