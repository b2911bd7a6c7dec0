package video

import (
	"context"
	"time"
)

// Default retry configuration constants.
const (
	defaultMaxAttempts = 3
	defaultDelay       = 2 * time.Second
)

// Policy is an explicit retry schedule decoupled from call sites: a bounded
// number of attempts with a fixed wait between them. The zero value is not
// usable; construct with NewPolicy.
type Policy struct {
	maxAttempts int
	delay       time.Duration

	// sleep is swappable so tests run without real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy builds a retry policy. Non-positive arguments fall back to the
// defaults (3 attempts, 2s fixed delay).
func NewPolicy(maxAttempts int, delay time.Duration) Policy {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	if delay <= 0 {
		delay = defaultDelay
	}
	return Policy{maxAttempts: maxAttempts, delay: delay, sleep: sleepCtx}
}

// MaxAttempts returns the attempt bound.
func (p Policy) MaxAttempts() int { return p.maxAttempts }

// Retry runs fn until it succeeds or attempts are exhausted, waiting the
// fixed delay between attempts. The last error is returned on exhaustion;
// context cancellation cuts the wait short.
func (p Policy) Retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt < p.maxAttempts {
			if err := p.sleep(ctx, p.delay); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
