package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trafix/internal/verification/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

// Store keeps verification challenges in process memory for tests and single
// instance deployments. Consume-once holds because validation and deletion
// happen under one lock.
type Store struct {
	mu         sync.Mutex
	challenges map[string]*models.Challenge
}

// New constructs an empty in-memory challenge store.
func New() *Store {
	return &Store{challenges: make(map[string]*models.Challenge)}
}

func (s *Store) Put(_ context.Context, challenge *models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *challenge
	s.challenges[challenge.Key()] = &cp
	return nil
}

func (s *Store) Consume(_ context.Context, licence id.LicenceNumber, phone, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.Key(licence, phone)
	challenge, ok := s.challenges[key]
	if !ok {
		return fmt.Errorf("challenge not found: %w", sentinel.ErrNotFound)
	}

	if err := challenge.ValidateForConsume(code, now); err != nil {
		// Stale entries are removed so they cannot be probed; a mismatch
		// keeps the challenge usable until expiry.
		if challenge.Expired(now) {
			delete(s.challenges, key)
		}
		return err
	}

	delete(s.challenges, key)
	return nil
}

func (s *Store) Delete(_ context.Context, licence id.LicenceNumber, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, models.Key(licence, phone))
	return nil
}

func (s *Store) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, challenge := range s.challenges {
		if challenge.Expired(now) {
			delete(s.challenges, key)
			deleted++
		}
	}
	return deleted, nil
}
