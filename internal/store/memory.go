package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/i474232898/openweathermap-client/internal/retrieval"
)

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: endpoint, value: records in save order
	data map[string][]retrieval.Record

	maxHistory int           // max number of records per endpoint
	maxAge     time.Duration // optional max age of records
	now        func() time.Time
}

// NewMemoryStore creates a MemoryStore. If maxHistory is <= 0 it is treated
// as unlimited, and so is a maxAge <= 0.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]retrieval.Record),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends rec to its endpoint's history and enforces retention.
func (s *MemoryStore) Save(_ context.Context, rec retrieval.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[rec.Endpoint], rec)

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].StartedAt.Before(cutoff) {
				break
			}
		}
		history = history[i:]
	}

	s.data[rec.Endpoint] = history
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]retrieval.Record, error) {
	s.mu.RLock()
	var all []retrieval.Record
	for _, history := range s.data {
		all = append(all, history...)
	}
	s.mu.RUnlock()

	if len(all) == 0 {
		return nil, ErrNotFound
	}

	slices.SortStableFunc(all, func(a, b retrieval.Record) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) Latest(_ context.Context, endpoint string) (retrieval.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[endpoint]
	if len(history) == 0 {
		return retrieval.Record{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

func (s *MemoryStore) Range(_ context.Context, endpoint string, from, to time.Time) ([]retrieval.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []retrieval.Record
	for _, rec := range s.data[endpoint] {
		if inRange(rec.StartedAt, from, to) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
