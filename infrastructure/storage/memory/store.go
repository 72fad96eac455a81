// Package memory provides a process-local session store for development and
// tests, and as the fallback when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

// SessionStore keeps session records in a map. Safe for concurrent use.
type SessionStore struct {
	mu      sync.RWMutex
	records map[string]domain.SessionRecord
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore returns an empty in-memory store.
func NewSessionStore() *SessionStore {
	return &SessionStore{records: make(map[string]domain.SessionRecord)}
}

// Save upserts the record keyed by session id.
func (s *SessionStore) Save(_ context.Context, record domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// Get retrieves a record by session id.
func (s *SessionStore) Get(_ context.Context, id string) (domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return domain.SessionRecord{}, fmt.Errorf("%w: session %s", ports.ErrNotFound, id)
	}
	return record, nil
}

// List returns the most recent records, newest first, up to limit.
func (s *SessionStore) List(_ context.Context, limit int) ([]domain.SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.SessionRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
