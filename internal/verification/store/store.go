// Package store defines the challenge store contract shared by the memory,
// redis, and postgres implementations.
package store

import (
	"context"
	"time"

	"trafix/internal/verification/models"
	id "trafix/pkg/domain"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound when no challenge exists for the key
// - Return sentinel.ErrExpired when the challenge is past expiry (the stale
//   entry is deleted as a side effect)
// - Return sentinel.ErrMismatch when the supplied code differs (entry kept)
// - Return wrapped errors with context for infrastructure failures

// ChallengeStore persists verification challenges keyed by (licence, phone).
type ChallengeStore interface {
	// Put stores a challenge, overwriting any existing challenge for the
	// same key. Issuing never stacks codes.
	Put(ctx context.Context, challenge *models.Challenge) error

	// Consume atomically validates and deletes the challenge for the key.
	// Two concurrent calls with the correct code yield exactly one success;
	// the loser observes sentinel.ErrNotFound.
	Consume(ctx context.Context, licence id.LicenceNumber, phone, code string, now time.Time) error

	// Delete removes the challenge for the key if present. Used to roll
	// back an issued code when SMS dispatch fails.
	Delete(ctx context.Context, licence id.LicenceNumber, phone string) error

	// DeleteExpired removes challenges past expiry as of now. Implementations
	// with native TTL may make this a no-op.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
