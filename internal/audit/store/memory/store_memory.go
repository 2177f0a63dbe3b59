package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"trafix/internal/audit"
)

// Store keeps audit events in memory for tests and dev. Events are held in
// append order.
type Store struct {
	mu        sync.RWMutex
	events    []audit.Event
	published map[uuid.UUID]bool
}

func New() *Store {
	return &Store{published: make(map[uuid.UUID]bool)}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListBySubject(_ context.Context, subject string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, event := range s.events {
		if event.Subject == subject {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *Store) NextBatch(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, event := range s.events {
		if s.published[event.ID] {
			continue
		}
		out = append(out, event)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, eventID := range ids {
		s.published[eventID] = true
	}
	return nil
}
