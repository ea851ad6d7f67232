// Package retry runs an operation a bounded number of times with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var ErrExhausted = errors.New("retry: attempts exhausted")

type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Attempts: 5, BaseDelay: 10 * time.Millisecond, MaxDelay: 500 * time.Millisecond}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the attempts run out.
// On exhaustion the returned error wraps both ErrExhausted and the last error.
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func(attempt int) error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	var last error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		last = fn(attempt)
		if last == nil || !retryable(last) {
			return last
		}
		if attempt == p.Attempts {
			break
		}
		t := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.Attempts, last)
}

// delay is BaseDelay * 2^(attempt-1), capped at MaxDelay, with up to 50% jitter.
func (p Policy) delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			break
		}
		if d >= time.Duration(1<<61) {
			break
		}
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d/2 + rand.N(d/2+1)
}
