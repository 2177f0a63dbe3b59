package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"trafix/internal/violation/models"
	"trafix/internal/violation/store"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

// Store keeps violation records in memory for tests and dev.
type Store struct {
	mu      sync.RWMutex
	records map[id.ViolationID]*models.Record
}

func New() *Store {
	return &Store{records: make(map[id.ViolationID]*models.Record)}
}

func (s *Store) Create(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return fmt.Errorf("violation %s already exists: %w", record.ID, sentinel.ErrConflict)
	}
	cp := *record
	s.records[record.ID] = &cp
	return nil
}

func (s *Store) GetByID(_ context.Context, violationID id.ViolationID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[violationID]
	if !ok {
		return nil, fmt.Errorf("violation not found: %w", sentinel.ErrNotFound)
	}
	cp := *record
	return &cp, nil
}

func (s *Store) List(_ context.Context, filter store.Filter) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Record
	for _, record := range s.records {
		if !filter.Licence.IsEmpty() && record.Licence != filter.Licence {
			continue
		}
		if !filter.OfficerNumber.IsEmpty() && record.OfficerNumber != filter.OfficerNumber {
			continue
		}
		cp := *record
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (s *Store) SetStatus(_ context.Context, violationID id.ViolationID, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[violationID]
	if !ok {
		return fmt.Errorf("violation not found: %w", sentinel.ErrNotFound)
	}
	if status == models.StatusCancelled && record.Status != models.StatusActive {
		return fmt.Errorf("violation is not active: %w", sentinel.ErrInvalidState)
	}
	record.Status = status
	record.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SetPaymentStatus(_ context.Context, violationID id.ViolationID, payment models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[violationID]
	if !ok {
		return fmt.Errorf("violation not found: %w", sentinel.ErrNotFound)
	}
	record.PaymentStatus = payment
	record.UpdatedAt = time.Now()
	return nil
}
