// Package redis opens the shared Redis client backing the verification
// challenge store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trafix/internal/platform/config"
)

// Client wraps the go-redis client so callers depend on this package, not the
// driver, for construction.
type Client struct {
	*redis.Client
}

// New connects using the configured URL and verifies the connection with a
// ping. Returns nil when no URL is configured; deployments without Redis fall
// back to the database-backed challenge store.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: client}, nil
}
