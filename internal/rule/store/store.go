package store

import (
	"context"

	"trafix/internal/rule/models"
	id "trafix/pkg/domain"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the rule does not exist
// - Return wrapped errors with context for infrastructure failures

// RuleStore persists traffic rules.
type RuleStore interface {
	Create(ctx context.Context, rule *models.Rule) error
	GetByID(ctx context.Context, ruleID id.RuleID) (*models.Rule, error)
	List(ctx context.Context) ([]*models.Rule, error)
	Update(ctx context.Context, rule *models.Rule) error
	Delete(ctx context.Context, ruleID id.RuleID) error
}
