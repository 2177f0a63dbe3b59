package models

import (
	"time"

	"github.com/asaskevich/govalidator"

	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
	"trafix/pkg/phone"
)

// Officer is a law-enforcement user who records violations. Points here are
// a merit counter credited one-for-one with the points deducted from holders
// (the conservation invariant).
type Officer struct {
	OfficerNumber id.OfficerNumber `json:"officerNumber"`
	FullName      string           `json:"fullName"`
	Phone         string           `json:"phone"`
	Station       string           `json:"station"`
	Rank          string           `json:"rank"`
	Points        int              `json:"points"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// New builds an officer with a zero merit balance.
func New(number id.OfficerNumber, fullName, phoneNumber, station, rank string, now time.Time) *Officer {
	return &Officer{
		OfficerNumber: number,
		FullName:      fullName,
		Phone:         phone.Normalize(phoneNumber),
		Station:       station,
		Rank:          rank,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks field constraints shared by create and update.
func (o *Officer) Validate() error {
	if o.OfficerNumber.IsEmpty() || !govalidator.StringLength(o.OfficerNumber.String(), "3", "32") {
		return dErrors.New(dErrors.CodeBadRequest, "officer number must be 3-32 characters")
	}
	if !govalidator.StringLength(o.FullName, "1", "128") {
		return dErrors.New(dErrors.CodeBadRequest, "full name is required")
	}
	if !phone.IsValid(o.Phone) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid phone number")
	}
	if len(o.Station) > 128 || len(o.Rank) > 64 {
		return dErrors.New(dErrors.CodeBadRequest, "station or rank too long")
	}
	return nil
}
