package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"trafix/internal/officer/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

// Store keeps officers in memory for tests and dev.
type Store struct {
	mu       sync.RWMutex
	officers map[id.OfficerNumber]*models.Officer
}

func New() *Store {
	return &Store{officers: make(map[id.OfficerNumber]*models.Officer)}
}

func (s *Store) Create(_ context.Context, officer *models.Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.officers[officer.OfficerNumber]; exists {
		return fmt.Errorf("officer %s already registered: %w", officer.OfficerNumber, sentinel.ErrConflict)
	}
	cp := *officer
	s.officers[officer.OfficerNumber] = &cp
	return nil
}

func (s *Store) GetByNumber(_ context.Context, number id.OfficerNumber) (*models.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	officer, ok := s.officers[number]
	if !ok {
		return nil, fmt.Errorf("officer not found: %w", sentinel.ErrNotFound)
	}
	cp := *officer
	return &cp, nil
}

func (s *Store) List(_ context.Context) ([]*models.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Officer, 0, len(s.officers))
	for _, officer := range s.officers {
		cp := *officer
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OfficerNumber < out[j].OfficerNumber })
	return out, nil
}

func (s *Store) Update(_ context.Context, officer *models.Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.officers[officer.OfficerNumber]
	if !ok {
		return fmt.Errorf("officer not found: %w", sentinel.ErrNotFound)
	}
	cp := *officer
	cp.CreatedAt = existing.CreatedAt
	cp.Points = existing.Points
	cp.UpdatedAt = time.Now()
	s.officers[officer.OfficerNumber] = &cp
	return nil
}

func (s *Store) Delete(_ context.Context, number id.OfficerNumber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.officers[number]; !ok {
		return fmt.Errorf("officer not found: %w", sentinel.ErrNotFound)
	}
	delete(s.officers, number)
	return nil
}

func (s *Store) AdjustPoints(_ context.Context, number id.OfficerNumber, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	officer, ok := s.officers[number]
	if !ok {
		return fmt.Errorf("officer not found: %w", sentinel.ErrNotFound)
	}
	officer.Points += delta
	officer.UpdatedAt = time.Now()
	return nil
}
