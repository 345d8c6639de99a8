package identity

import (
	"context"
	"sync"

	"github.com/okian/attendance/internal/domain/model"
)

// MemoryStore keeps the roster in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.Identity
	closed  bool
}

// NewMemoryStore returns a MemoryStore holding records.
func NewMemoryStore(records ...Record) *MemoryStore {
	s := &MemoryStore{records: make(map[string]model.Identity, len(records))}
	for _, r := range records {
		s.records[r.Name] = model.Identity{Section: r.Section, RollNo: r.RollNo}
	}
	return s
}

// Lookup implements Lookup.
func (s *MemoryStore) Lookup(ctx context.Context, names []string) (map[string]model.Identity, error) {
	out := make(map[string]model.Identity)
	if len(names) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	for _, name := range names {
		if id, ok := s.records[name]; ok {
			out[name] = id
		}
	}
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, r := range records {
		s.records[r.Name] = model.Identity{Section: r.Section, RollNo: r.RollNo}
	}
	return nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements Store. Later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
