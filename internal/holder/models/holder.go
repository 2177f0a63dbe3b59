package models

import (
	"time"

	"github.com/asaskevich/govalidator"

	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
	"trafix/pkg/phone"
)

// DefaultPoints is the balance a licence starts with. Violations deduct from
// it; reaching zero is handled administratively, not here.
const DefaultPoints = 12

// Holder is a licence-bearing individual.
//
// Invariants:
//   - Licence number is the immutable business key.
//   - Points only change through violation recording (conservation with the
//     recording officer) or an explicit administrative adjustment.
type Holder struct {
	Licence   id.LicenceNumber `json:"licenceNumber"`
	FullName  string           `json:"fullName"`
	Phone     string           `json:"phone"`
	Address   string           `json:"address"`
	Points    int              `json:"points"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// New builds a holder with the default points balance.
func New(licence id.LicenceNumber, fullName, phoneNumber, address string, now time.Time) *Holder {
	return &Holder{
		Licence:   licence,
		FullName:  fullName,
		Phone:     phone.Normalize(phoneNumber),
		Address:   address,
		Points:    DefaultPoints,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks field constraints shared by create and update.
func (h *Holder) Validate() error {
	if h.Licence.IsEmpty() || !govalidator.StringLength(h.Licence.String(), "3", "32") {
		return dErrors.New(dErrors.CodeBadRequest, "licence number must be 3-32 characters")
	}
	if !govalidator.StringLength(h.FullName, "1", "128") {
		return dErrors.New(dErrors.CodeBadRequest, "full name is required")
	}
	if !phone.IsValid(h.Phone) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid phone number")
	}
	if len(h.Address) > 512 {
		return dErrors.New(dErrors.CodeBadRequest, "address too long")
	}
	return nil
}
