// Package verification issues and verifies one-time codes bound to a
// (licence, phone) key. Codes are held in a ChallengeStore; the production
// store is Redis so consume-once semantics hold across instances.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"trafix/internal/verification/metrics"
	"trafix/internal/verification/models"
	"trafix/internal/verification/store"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

const DefaultTTL = 5 * time.Minute

// Service issues and consumes verification challenges.
type Service struct {
	store   store.ChallengeStore
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock injects the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(challengeStore store.ChallengeStore, opts ...Option) (*Service, error) {
	if challengeStore == nil {
		return nil, fmt.Errorf("challenge store is required")
	}
	svc := &Service{
		store:  challengeStore,
		ttl:    DefaultTTL,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue generates a uniformly random 6-digit code, stores it under the
// (licence, phone) key with the configured TTL, and returns it for dispatch.
// Any previously issued code for the key is invalidated.
func (s *Service) Issue(ctx context.Context, licence id.LicenceNumber, phone string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	challenge := models.New(licence, phone, code, s.now(), s.ttl)
	if err := s.store.Put(ctx, challenge); err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.CodesIssued.Inc()
	}
	s.logger.DebugContext(ctx, "verification code issued",
		"licence", licence.String(),
		"expires_at", challenge.ExpiresAt,
	)
	return code, nil
}

// Verify consumes the challenge for the key if the supplied code matches.
// Returns store sentinel errors (ErrNotFound, ErrExpired, ErrMismatch);
// callers decide how much of the distinction to surface.
func (s *Service) Verify(ctx context.Context, licence id.LicenceNumber, phone, code string) error {
	err := s.store.Consume(ctx, licence, phone, code, s.now())
	if err != nil {
		if s.metrics != nil {
			s.metrics.VerifyFailures.WithLabelValues(failureReason(err)).Inc()
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.VerifySuccesses.Inc()
	}
	return nil
}

// Cancel removes any live challenge for the key. Used to roll back an issued
// code when dispatch fails.
func (s *Service) Cancel(ctx context.Context, licence id.LicenceNumber, phone string) error {
	return s.store.Delete(ctx, licence, phone)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrExpired):
		return "expired"
	case errors.Is(err, sentinel.ErrMismatch):
		return "mismatch"
	case errors.Is(err, sentinel.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

var codeMax = big.NewInt(1000000)

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
