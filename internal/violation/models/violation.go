package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
	"trafix/pkg/phone"
)

// Status is the lifecycle state of a violation record.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus tracks settlement of the fine. Transitions come from the
// payment-confirmation flow, never from recording.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentUnpaid, PaymentPaid, PaymentPartiallyPaid:
		return PaymentStatus(s), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "invalid payment status")
}

// Record is a recorded traffic violation.
//
// Invariants:
//   - The rule snapshot fields (RuleSection, RuleProvision, RuleFine,
//     RulePoints) freeze the rule as it existed at recording time and never
//     change afterwards.
//   - For every active record, RulePoints were deducted from the holder and
//     credited to the officer in the same unit of work.
type Record struct {
	ID            id.ViolationID   `json:"id"`
	Licence       id.LicenceNumber `json:"licenceNumber"`
	HolderName    string           `json:"holderName"`
	OfficerNumber id.OfficerNumber `json:"officerNumber"`
	OfficerName   string           `json:"officerName"`
	Phone         string           `json:"phone"`
	VehicleNumber string           `json:"vehicleNumber"`
	Location      string           `json:"placeOfViolation"`
	RuleID        id.RuleID        `json:"ruleId"`
	RuleSection   string           `json:"ruleSection"`
	RuleProvision string           `json:"ruleProvision"`
	RuleFine      int64            `json:"ruleFine"`
	RulePoints    int              `json:"rulePoints"`
	Notes         string           `json:"notes,omitempty"`
	OccurredAt    time.Time        `json:"occurredAt"`
	Status        Status           `json:"status"`
	PaymentStatus PaymentStatus    `json:"paymentStatus"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Request carries the violation intent submitted by an officer. The same
// payload is sent in both phases of the recording flow.
type Request struct {
	Licence       id.LicenceNumber `json:"licenceNumber"`
	OfficerNumber id.OfficerNumber `json:"policeNumber"`
	Phone         string           `json:"phoneNumber"`
	VehicleNumber string           `json:"vehicleNumber"`
	Location      string           `json:"placeOfViolation"`
	RuleID        id.RuleID        `json:"ruleId"`
	Notes         string           `json:"notes,omitempty"`
}

// Normalize canonicalizes the caller-supplied fields: phone to digits,
// vehicle number to uppercase.
func (r *Request) Normalize() {
	r.Phone = phone.Normalize(r.Phone)
	r.VehicleNumber = strings.ToUpper(strings.TrimSpace(r.VehicleNumber))
}

// Validate checks required fields. Runs before any lookup so bad input never
// costs a database round-trip.
func (r *Request) Validate() error {
	if r.Licence.IsEmpty() {
		return dErrors.New(dErrors.CodeBadRequest, "licence number is required")
	}
	if r.OfficerNumber.IsEmpty() {
		return dErrors.New(dErrors.CodeBadRequest, "police number is required")
	}
	if !phone.IsValid(r.Phone) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid phone number")
	}
	if !govalidator.StringLength(r.VehicleNumber, "2", "16") {
		return dErrors.New(dErrors.CodeBadRequest, "vehicle number must be 2-16 characters")
	}
	if !govalidator.StringLength(r.Location, "1", "256") {
		return dErrors.New(dErrors.CodeBadRequest, "place of violation is required")
	}
	if r.RuleID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "rule id is required")
	}
	if len(r.Notes) > 1024 {
		return dErrors.New(dErrors.CodeBadRequest, "notes too long")
	}
	return nil
}
