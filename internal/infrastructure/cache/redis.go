package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr        string
	DB          int
	PingTimeout time.Duration
}

// Open connects to Redis and verifies the connection with a PING.
func Open(ctx context.Context, opt Options) (*redis.Client, error) {
	if opt.PingTimeout <= 0 {
		opt.PingTimeout = 5 * time.Second
	}
	r := redis.NewClient(&redis.Options{Addr: opt.Addr, DB: opt.DB})
	ctx, cancel := context.WithTimeout(ctx, opt.PingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis %s: %w", opt.Addr, err)
	}
	return r, nil
}
