package models

import (
	"time"

	"github.com/asaskevich/govalidator"

	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

// Role determines what an account may do.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOfficer:
		return Role(s), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "invalid role")
}

// Status is the approval state of an account. Signups start pending and only
// approved accounts can log in.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Account is a backoffice user.
type Account struct {
	ID           id.AccountID `json:"id"`
	Email        string       `json:"email"`
	FullName     string       `json:"fullName"`
	PasswordHash []byte       `json:"-"`
	Role         Role         `json:"role"`
	Status       Status       `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func New(email, fullName string, passwordHash []byte, role Role, now time.Time) *Account {
	return &Account{
		ID:           id.NewAccountID(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (a *Account) Validate() error {
	if !govalidator.IsEmail(a.Email) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid email address")
	}
	if !govalidator.StringLength(a.FullName, "1", "128") {
		return dErrors.New(dErrors.CodeBadRequest, "full name is required")
	}
	if len(a.PasswordHash) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "password is required")
	}
	return nil
}
