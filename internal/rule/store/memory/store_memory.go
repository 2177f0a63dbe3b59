package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"trafix/internal/rule/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

// Store keeps rules in memory for tests and dev.
type Store struct {
	mu    sync.RWMutex
	rules map[id.RuleID]*models.Rule
}

func New() *Store {
	return &Store{rules: make(map[id.RuleID]*models.Rule)}
}

func (s *Store) Create(_ context.Context, rule *models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[rule.ID]; exists {
		return fmt.Errorf("rule %s already exists: %w", rule.ID, sentinel.ErrConflict)
	}
	cp := *rule
	s.rules[rule.ID] = &cp
	return nil
}

func (s *Store) GetByID(_ context.Context, ruleID id.RuleID) (*models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[ruleID]
	if !ok {
		return nil, fmt.Errorf("rule not found: %w", sentinel.ErrNotFound)
	}
	cp := *rule
	return &cp, nil
}

func (s *Store) List(_ context.Context) ([]*models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		cp := *rule
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Section < out[j].Section })
	return out, nil
}

func (s *Store) Update(_ context.Context, rule *models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.rules[rule.ID]
	if !ok {
		return fmt.Errorf("rule not found: %w", sentinel.ErrNotFound)
	}
	cp := *rule
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now()
	s.rules[rule.ID] = &cp
	return nil
}

func (s *Store) Delete(_ context.Context, ruleID id.RuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[ruleID]; !ok {
		return fmt.Errorf("rule not found: %w", sentinel.ErrNotFound)
	}
	delete(s.rules, ruleID)
	return nil
}
