package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"trafix/internal/holder/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

// Store keeps licence holders in memory for tests and dev.
type Store struct {
	mu      sync.RWMutex
	holders map[id.LicenceNumber]*models.Holder
}

func New() *Store {
	return &Store{holders: make(map[id.LicenceNumber]*models.Holder)}
}

func (s *Store) Create(_ context.Context, holder *models.Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.holders[holder.Licence]; exists {
		return fmt.Errorf("licence %s already registered: %w", holder.Licence, sentinel.ErrConflict)
	}
	cp := *holder
	s.holders[holder.Licence] = &cp
	return nil
}

func (s *Store) GetByLicence(_ context.Context, licence id.LicenceNumber) (*models.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	holder, ok := s.holders[licence]
	if !ok {
		return nil, fmt.Errorf("licence holder not found: %w", sentinel.ErrNotFound)
	}
	cp := *holder
	return &cp, nil
}

func (s *Store) List(_ context.Context) ([]*models.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Holder, 0, len(s.holders))
	for _, holder := range s.holders {
		cp := *holder
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Licence < out[j].Licence })
	return out, nil
}

func (s *Store) Update(_ context.Context, holder *models.Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.holders[holder.Licence]
	if !ok {
		return fmt.Errorf("licence holder not found: %w", sentinel.ErrNotFound)
	}
	cp := *holder
	cp.CreatedAt = existing.CreatedAt
	cp.Points = existing.Points
	cp.UpdatedAt = time.Now()
	s.holders[holder.Licence] = &cp
	return nil
}

func (s *Store) Delete(_ context.Context, licence id.LicenceNumber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.holders[licence]; !ok {
		return fmt.Errorf("licence holder not found: %w", sentinel.ErrNotFound)
	}
	delete(s.holders, licence)
	return nil
}

func (s *Store) AdjustPoints(_ context.Context, licence id.LicenceNumber, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	holder, ok := s.holders[licence]
	if !ok {
		return fmt.Errorf("licence holder not found: %w", sentinel.ErrNotFound)
	}
	holder.Points += delta
	holder.UpdatedAt = time.Now()
	return nil
}
