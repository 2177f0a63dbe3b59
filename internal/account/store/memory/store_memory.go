package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"trafix/internal/account/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

// Store keeps accounts in memory for tests and dev. Email uniqueness is
// case-insensitive.
type Store struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*models.Account
	byEmail  map[string]id.AccountID
}

func New() *Store {
	return &Store{
		accounts: make(map[id.AccountID]*models.Account),
		byEmail:  make(map[string]id.AccountID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(account.Email)
	if _, exists := s.byEmail[key]; exists {
		return fmt.Errorf("email %s already registered: %w", account.Email, sentinel.ErrConflict)
	}
	cp := *account
	s.accounts[account.ID] = &cp
	s.byEmail[key] = account.ID
	return nil
}

func (s *Store) GetByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	cp := *account
	return &cp, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	cp := *s.accounts[accountID]
	return &cp, nil
}

func (s *Store) List(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		cp := *account
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) SetStatus(_ context.Context, accountID id.AccountID, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	account.Status = status
	account.UpdatedAt = time.Now()
	return nil
}
