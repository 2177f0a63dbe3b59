package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafix/internal/verification/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

const (
	testLicence = id.LicenceNumber("LIC-001")
	testPhone   = "5551234567"
	testTTL     = 5 * time.Minute
)

func newChallenge(code string, now time.Time) *models.Challenge {
	return models.New(testLicence, testPhone, code, now, testTTL)
}

func TestStore_ConsumeOnce(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, newChallenge("123456", now)))

	t.Run("correct code consumes exactly once", func(t *testing.T) {
		require.NoError(t, store.Consume(ctx, testLicence, testPhone, "123456", now))

		err := store.Consume(ctx, testLicence, testPhone, "123456", now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestStore_Consume(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("missing key returns not found", func(t *testing.T) {
		store := New()
		err := store.Consume(ctx, testLicence, testPhone, "123456", now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("mismatch keeps the challenge usable", func(t *testing.T) {
		store := New()
		require.NoError(t, store.Put(ctx, newChallenge("123456", now)))

		err := store.Consume(ctx, testLicence, testPhone, "999999", now)
		assert.ErrorIs(t, err, sentinel.ErrMismatch)

		// The correct code still works afterwards.
		assert.NoError(t, store.Consume(ctx, testLicence, testPhone, "123456", now))
	})

	t.Run("expired challenge fails and is deleted even with correct code", func(t *testing.T) {
		store := New()
		require.NoError(t, store.Put(ctx, newChallenge("123456", now)))

		later := now.Add(testTTL + time.Second)
		err := store.Consume(ctx, testLicence, testPhone, "123456", later)
		assert.ErrorIs(t, err, sentinel.ErrExpired)

		// Stale entry is gone, subsequent attempts see not found.
		err = store.Consume(ctx, testLicence, testPhone, "123456", later)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("reissue invalidates the previous code", func(t *testing.T) {
		store := New()
		require.NoError(t, store.Put(ctx, newChallenge("111111", now)))
		require.NoError(t, store.Put(ctx, newChallenge("222222", now)))

		err := store.Consume(ctx, testLicence, testPhone, "111111", now)
		assert.ErrorIs(t, err, sentinel.ErrMismatch)

		assert.NoError(t, store.Consume(ctx, testLicence, testPhone, "222222", now))
	})
}

func TestStore_Delete(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, newChallenge("123456", now)))
	require.NoError(t, store.Delete(ctx, testLicence, testPhone))

	err := store.Consume(ctx, testLicence, testPhone, "123456", now)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, testLicence, testPhone))
}

func TestStore_DeleteExpired(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, models.New("LIC-A", testPhone, "111111", now.Add(-10*time.Minute), testTTL)))
	require.NoError(t, store.Put(ctx, models.New("LIC-B", testPhone, "222222", now, testTTL)))

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	// Live challenge survives the sweep.
	assert.NoError(t, store.Consume(ctx, "LIC-B", testPhone, "222222", now))
}

// TestStore_ConcurrentConsume verifies that racing verifies for the same key
// yield exactly one success.
func TestStore_ConcurrentConsume(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, newChallenge("123456", now)))

	const goroutines = 50
	var wg sync.WaitGroup
	var successes atomic.Int32
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if err := store.Consume(ctx, testLicence, testPhone, "123456", now); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one concurrent consume should win")
}
