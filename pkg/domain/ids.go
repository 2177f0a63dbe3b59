// Package domain defines the typed identifiers shared across verticals.
// Business keys (licence and officer numbers) stay strings because they are
// assigned by the authority, not by us; synthetic ids are UUID backed.
package domain

import "github.com/google/uuid"

// LicenceNumber identifies a licence holder by their licence plate number.
type LicenceNumber string

func (n LicenceNumber) String() string { return string(n) }
func (n LicenceNumber) IsEmpty() bool  { return n == "" }

// OfficerNumber identifies a police officer by their service number.
type OfficerNumber string

func (n OfficerNumber) String() string { return string(n) }
func (n OfficerNumber) IsEmpty() bool  { return n == "" }

// RuleID identifies a traffic rule.
type RuleID uuid.UUID

func NewRuleID() RuleID          { return RuleID(uuid.New()) }
func (id RuleID) String() string { return uuid.UUID(id).String() }
func (id RuleID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RuleID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *RuleID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = RuleID(u)
	return nil
}

// ParseRuleID parses the string form of a RuleID.
func ParseRuleID(s string) (RuleID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return RuleID{}, err
	}
	return RuleID(u), nil
}

// ViolationID identifies a violation record.
type ViolationID uuid.UUID

func NewViolationID() ViolationID     { return ViolationID(uuid.New()) }
func (id ViolationID) String() string { return uuid.UUID(id).String() }
func (id ViolationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ViolationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ViolationID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ViolationID(u)
	return nil
}

// ParseViolationID parses the string form of a ViolationID.
func ParseViolationID(s string) (ViolationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ViolationID{}, err
	}
	return ViolationID(u), nil
}

// AccountID identifies a user account.
type AccountID uuid.UUID

func NewAccountID() AccountID       { return AccountID(uuid.New()) }
func (id AccountID) String() string { return uuid.UUID(id).String() }
func (id AccountID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id AccountID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *AccountID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = AccountID(u)
	return nil
}

// ParseAccountID parses the string form of an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID(u), nil
}
