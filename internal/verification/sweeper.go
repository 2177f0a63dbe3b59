package verification

import (
	"context"
	"log/slog"
	"time"

	"trafix/internal/verification/store"
)

// Sweeper periodically deletes expired challenges from stores without native
// TTL (memory, postgres). The Redis store expires keys itself.
type Sweeper struct {
	store    store.ChallengeStore
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(challengeStore store.ChallengeStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{store: challengeStore, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			deleted, err := s.store.DeleteExpired(ctx, time.Now())
			if err != nil {
				s.logger.WarnContext(ctx, "challenge sweep failed", "error", err.Error())
				continue
			}
			if deleted > 0 {
				s.logger.DebugContext(ctx, "challenge sweep", "deleted", deleted)
			}
		}
	}
}
