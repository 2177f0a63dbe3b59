package store

import (
	"context"

	"trafix/internal/holder/models"
	id "trafix/pkg/domain"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the holder does not exist
// - Return sentinel.ErrConflict when a create would duplicate a licence
// - Return wrapped errors with context for infrastructure failures

// HolderStore persists licence holders.
type HolderStore interface {
	Create(ctx context.Context, holder *models.Holder) error
	GetByLicence(ctx context.Context, licence id.LicenceNumber) (*models.Holder, error)
	List(ctx context.Context) ([]*models.Holder, error)
	Update(ctx context.Context, holder *models.Holder) error
	Delete(ctx context.Context, licence id.LicenceNumber) error

	// AdjustPoints atomically adds delta (may be negative) to the holder's
	// balance. Honors an ambient SQL transaction when one is in context.
	AdjustPoints(ctx context.Context, licence id.LicenceNumber, delta int) error
}
