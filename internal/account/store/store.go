package store

import (
	"context"

	"trafix/internal/account/models"
	id "trafix/pkg/domain"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the account does not exist
// - Return sentinel.ErrConflict when a create would duplicate an email
// - Return wrapped errors with context for infrastructure failures

// AccountStore persists backoffice accounts.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	SetStatus(ctx context.Context, accountID id.AccountID, status models.Status) error
}
