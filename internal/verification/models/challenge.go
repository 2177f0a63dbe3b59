package models

import (
	"fmt"
	"time"

	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

// Challenge is a short-lived one-time code bound to a licence holder and the
// phone number the code was sent to.
//
// Invariants:
//   - At most one live challenge per (licence, phone) key; issuing again
//     overwrites the previous challenge.
//   - A challenge is consumed at most once; consumption deletes it.
//   - A mismatching code never consumes the challenge.
type Challenge struct {
	Licence   id.LicenceNumber
	Phone     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// New builds a challenge expiring ttl after now.
func New(licence id.LicenceNumber, phone, code string, now time.Time, ttl time.Duration) *Challenge {
	return &Challenge{
		Licence:   licence,
		Phone:     phone,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Key returns the composite store key for this challenge.
func (c *Challenge) Key() string {
	return Key(c.Licence, c.Phone)
}

// Key builds the composite (licence, phone) store key.
func Key(licence id.LicenceNumber, phone string) string {
	return fmt.Sprintf("%s:%s", licence, phone)
}

// Expired reports whether the challenge is past its expiry at now.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ValidateForConsume checks the supplied code against this challenge.
// Expiry is checked before the code so a stale entry never verifies.
// Errors follow the store sentinel contract.
func (c *Challenge) ValidateForConsume(supplied string, now time.Time) error {
	if c.Expired(now) {
		return fmt.Errorf("challenge expired at %s: %w", c.ExpiresAt.Format(time.RFC3339), sentinel.ErrExpired)
	}
	if c.Code != supplied {
		return fmt.Errorf("verification code mismatch: %w", sentinel.ErrMismatch)
	}
	return nil
}
