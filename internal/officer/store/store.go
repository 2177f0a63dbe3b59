package store

import (
	"context"

	"trafix/internal/officer/models"
	id "trafix/pkg/domain"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the officer does not exist
// - Return sentinel.ErrConflict when a create would duplicate a number
// - Return wrapped errors with context for infrastructure failures

// OfficerStore persists officers.
type OfficerStore interface {
	Create(ctx context.Context, officer *models.Officer) error
	GetByNumber(ctx context.Context, number id.OfficerNumber) (*models.Officer, error)
	List(ctx context.Context) ([]*models.Officer, error)
	Update(ctx context.Context, officer *models.Officer) error
	Delete(ctx context.Context, number id.OfficerNumber) error

	// AdjustPoints atomically adds delta to the officer's merit balance.
	// Honors an ambient SQL transaction when one is in context.
	AdjustPoints(ctx context.Context, number id.OfficerNumber, delta int) error
}
