package querylog

import (
	"context"
	"sync"

	"github.com/district-compass/school-search-api/internal/ports/out/querylog"
)

// Store is an in-memory implementation of querylog.Store. It keeps a bounded
// ring of recent entries and is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []querylog.Entry
	cap     int
}

const defaultCap = 1000

func NewStore() *Store {
	return &Store{cap: defaultCap}
}

func (s *Store) Record(ctx context.Context, e querylog.Entry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if len(s.entries) > s.cap {
		s.entries = s.entries[len(s.entries)-s.cap:]
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]querylog.Entry, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]querylog.Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
