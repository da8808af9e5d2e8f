// internal/infra/memory/query_store.go
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eduquery/internal/domain/query"
)

// QueryStore keeps every query in process memory, most recent first.
// It exclusively owns the records; reads return copies.
type QueryStore struct {
	mu      sync.Mutex
	queries []query.Query
	now     func() time.Time
}

// NewQueryStore creates a store seeded with the given records (kept in the given order).
// A nil clock defaults to time.Now.
func NewQueryStore(seed []query.Query, clock func() time.Time) *QueryStore {
	if clock == nil {
		clock = time.Now
	}
	queries := make([]query.Query, len(seed))
	copy(queries, seed)
	return &QueryStore{queries: queries, now: clock}
}

func (s *QueryStore) Append(ctx context.Context, q query.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(q.ID) >= 0 {
		return fmt.Errorf("%w: %s", query.ErrDuplicateID, q.ID)
	}

	queries := make([]query.Query, 0, len(s.queries)+1)
	queries = append(queries, q)
	s.queries = append(queries, s.queries...)
	return nil
}

func (s *QueryStore) Update(ctx context.Context, id string, patch query.Patch) (query.Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return query.Query{}, fmt.Errorf("%w: %s", query.ErrNotFound, id)
	}

	s.queries[idx] = patch.Apply(s.queries[idx], s.now())
	return s.queries[idx], nil
}

func (s *QueryStore) Get(ctx context.Context, id string) (query.Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return query.Query{}, fmt.Errorf("%w: %s", query.ErrNotFound, id)
	}
	return s.queries[idx], nil
}

func (s *QueryStore) List(ctx context.Context) ([]query.Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]query.Query, len(s.queries))
	copy(out, s.queries)
	return out, nil
}

// indexOf must be called with mu held.
func (s *QueryStore) indexOf(id string) int {
	for i := range s.queries {
		if s.queries[i].ID == id {
			return i
		}
	}
	return -1
}
