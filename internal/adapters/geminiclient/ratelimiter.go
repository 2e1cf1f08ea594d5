package geminiclient

import (
	"context"
	"sync"
	"time"
)

// rateLimiter enforces a minimum interval between calls. The mutex is held
// for the duration of the wait so concurrent callers are serialized and each
// observes the full spacing; there is no shared global state.
type rateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time

	// Injected for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func newRateLimiter(minInterval time.Duration) *rateLimiter {
	return &rateLimiter{
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait blocks until the minimum interval since the previous call has elapsed,
// then claims the current slot. Returns early if ctx is cancelled.
func (r *rateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.minInterval <= 0 {
		r.last = r.now()
		return nil
	}

	if !r.last.IsZero() {
		if remaining := r.minInterval - r.now().Sub(r.last); remaining > 0 {
			if err := r.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}
	r.last = r.now()
	return nil
}
