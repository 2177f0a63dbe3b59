package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"trafix/internal/verification/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

var consumeDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "trafix_challenge_consume_duration_ms",
	Help:    "Latency of challenge consume operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const challengeKeyPrefix = "vchal:"

// expiredGrace keeps an entry around past its expiry so a late verify reads
// as expired rather than missing, matching the other store backends. The
// Redis TTL evicts it after the grace window.
const expiredGrace = 10 * time.Minute

// consumeScript implements atomic compare-and-delete against a
// "code|expiresUnixMilli" value. Returns:
//
//	0 - key missing (never issued, evicted, or already consumed)
//	1 - code mismatch (entry kept)
//	2 - consumed
//	3 - expired (entry deleted)
var consumeScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
  return 0
end
local sep = string.find(stored, "|", 1, true)
if tonumber(ARGV[2]) > tonumber(string.sub(stored, sep + 1)) then
  redis.call("DEL", KEYS[1])
  return 3
end
if string.sub(stored, 1, sep - 1) ~= ARGV[1] then
  return 1
end
redis.call("DEL", KEYS[1])
return 2
`)

// Store is the Redis-backed challenge store. This is the production
// implementation for multi-instance deployments: consume-once holds across
// processes and codes survive restarts for their TTL.
type Store struct {
	client *redis.Client
}

// New constructs a Redis-backed challenge store.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(licence id.LicenceNumber, phone string) string {
	return challengeKeyPrefix + models.Key(licence, phone)
}

func (s *Store) Put(ctx context.Context, challenge *models.Challenge) error {
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("challenge already expired: %w", sentinel.ErrInvalidState)
	}
	value := fmt.Sprintf("%s|%d", challenge.Code, challenge.ExpiresAt.UnixMilli())
	// SET overwrites any previous challenge for the key; codes never stack.
	if err := s.client.Set(ctx, key(challenge.Licence, challenge.Phone), value, ttl+expiredGrace).Err(); err != nil {
		return fmt.Errorf("put challenge: %w", err)
	}
	return nil
}

func (s *Store) Consume(ctx context.Context, licence id.LicenceNumber, phone, code string, now time.Time) error {
	start := time.Now()
	defer func() {
		consumeDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	res, err := consumeScript.Run(ctx, s.client, []string{key(licence, phone)}, code, now.UnixMilli()).Int()
	if err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	switch res {
	case 0:
		return fmt.Errorf("challenge not found: %w", sentinel.ErrNotFound)
	case 1:
		return fmt.Errorf("verification code mismatch: %w", sentinel.ErrMismatch)
	case 3:
		return fmt.Errorf("challenge expired: %w", sentinel.ErrExpired)
	default:
		return nil
	}
}

func (s *Store) Delete(ctx context.Context, licence id.LicenceNumber, phone string) error {
	if err := s.client.Del(ctx, key(licence, phone)).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts expired challenges natively.
func (s *Store) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
