//go:build integration

package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	challengeredis "trafix/internal/verification/store/redis"
	"trafix/internal/verification/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
	"trafix/pkg/testutil/containers"
)

const (
	testLicence = id.LicenceNumber("LIC-001")
	testPhone   = "5551234567"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *challengeredis.Store
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = challengeredis.New(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) put(code string, ttl time.Duration) {
	challenge := models.New(testLicence, testPhone, code, time.Now(), ttl)
	s.Require().NoError(s.store.Put(context.Background(), challenge))
}

func (s *RedisStoreSuite) TestConsumeOnce() {
	ctx := context.Background()
	s.put("123456", time.Minute)

	s.NoError(s.store.Consume(ctx, testLicence, testPhone, "123456", time.Now()))

	err := s.store.Consume(ctx, testLicence, testPhone, "123456", time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestMismatchKeepsChallenge() {
	ctx := context.Background()
	s.put("123456", time.Minute)

	err := s.store.Consume(ctx, testLicence, testPhone, "999999", time.Now())
	s.ErrorIs(err, sentinel.ErrMismatch)

	s.NoError(s.store.Consume(ctx, testLicence, testPhone, "123456", time.Now()))
}

func (s *RedisStoreSuite) TestExpiry() {
	ctx := context.Background()
	s.put("123456", time.Second)

	time.Sleep(1500 * time.Millisecond)

	// The entry outlives its expiry inside the grace window, so a late
	// verify is reported as expired rather than missing.
	err := s.store.Consume(ctx, testLicence, testPhone, "123456", time.Now())
	s.ErrorIs(err, sentinel.ErrExpired)

	err = s.store.Consume(ctx, testLicence, testPhone, "123456", time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestPutOverwrites() {
	ctx := context.Background()
	s.put("111111", time.Minute)
	s.put("222222", time.Minute)

	err := s.store.Consume(ctx, testLicence, testPhone, "111111", time.Now())
	s.ErrorIs(err, sentinel.ErrMismatch)

	s.NoError(s.store.Consume(ctx, testLicence, testPhone, "222222", time.Now()))
}

// TestConcurrentConsume verifies consume-once across racing goroutines on a
// shared connection pool, the scenario the Lua script exists for.
func (s *RedisStoreSuite) TestConcurrentConsume() {
	ctx := context.Background()
	s.put("123456", time.Minute)

	const goroutines = 50
	var wg sync.WaitGroup
	var successes atomic.Int32
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if err := s.store.Consume(ctx, testLicence, testPhone, "123456", time.Now()); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
}
