package store

import (
	"context"

	"trafix/internal/violation/models"
	id "trafix/pkg/domain"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the record does not exist
// - Return sentinel.ErrInvalidState for a lifecycle transition the current
//   state does not allow (e.g. cancelling twice)
// - Return wrapped errors with context for infrastructure failures

// Filter narrows List. Zero values match everything.
type Filter struct {
	Licence       id.LicenceNumber
	OfficerNumber id.OfficerNumber
}

// ViolationStore persists violation records. Create honors an ambient SQL
// transaction so the record insert joins the point transfer.
type ViolationStore interface {
	Create(ctx context.Context, record *models.Record) error
	GetByID(ctx context.Context, violationID id.ViolationID) (*models.Record, error)
	List(ctx context.Context, filter Filter) ([]*models.Record, error)

	// SetStatus transitions lifecycle state. Only active records may be
	// cancelled.
	SetStatus(ctx context.Context, violationID id.ViolationID, status models.Status) error

	// SetPaymentStatus updates settlement state.
	SetPaymentStatus(ctx context.Context, violationID id.ViolationID, payment models.PaymentStatus) error
}
