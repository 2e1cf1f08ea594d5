package discordbot

import (
	"sync"
	"time"
)

// cooldownTracker enforces a per-user minimum interval between analysis
// requests. State is owned by the tracker and guarded by its mutex.
type cooldownTracker struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time

	now func() time.Time // injected for tests
}

func newCooldownTracker(interval time.Duration) *cooldownTracker {
	return &cooldownTracker{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Claim records a request for the user if their cooldown has elapsed. When it
// has not, it returns the remaining wait and false.
func (c *cooldownTracker) Claim(userID string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[userID]; ok {
		if elapsed := now.Sub(last); elapsed < c.interval {
			return c.interval - elapsed, false
		}
	}
	c.last[userID] = now
	return 0, true
}

// Release clears the user's cooldown, used when their request failed so they
// may retry immediately.
func (c *cooldownTracker) Release(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.last, userID)
}
