package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trafix/internal/rule/models"
	"trafix/internal/rule/store"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
	"trafix/pkg/platform/sentinel"
)

// Service owns traffic rule administration. Rule edits apply from the next
// violation onward; recorded violations keep their snapshot.
type Service struct {
	store  store.RuleStore
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(ruleStore store.RuleStore, opts ...Option) (*Service, error) {
	if ruleStore == nil {
		return nil, fmt.Errorf("rule store is required")
	}
	svc := &Service{store: ruleStore, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) Create(ctx context.Context, section, provision string, fine int64, points int) (*models.Rule, error) {
	rule := models.New(section, provision, fine, points, time.Now())
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, rule); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create rule")
	}
	return rule, nil
}

func (s *Service) Get(ctx context.Context, ruleID id.RuleID) (*models.Rule, error) {
	rule, err := s.store.GetByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "rule not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rule")
	}
	return rule, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Rule, error) {
	rules, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rules")
	}
	return rules, nil
}

func (s *Service) Update(ctx context.Context, rule *models.Rule) (*models.Rule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	rule.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, rule); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "rule not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update rule")
	}
	return s.Get(ctx, rule.ID)
}

func (s *Service) Delete(ctx context.Context, ruleID id.RuleID) error {
	if err := s.store.Delete(ctx, ruleID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "rule not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete rule")
	}
	s.logger.InfoContext(ctx, "rule deleted", "rule_id", ruleID.String())
	return nil
}
