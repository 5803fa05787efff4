package browsertest

import (
	"context"
	"sync"
	"time"
)

// Clock is a manual clock. Sleep advances it instantly, so a wait polling a
// simulated page runs in zero wall time.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock set to an arbitrary fixed instant
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current simulated time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock by d
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)
	return nil
}

// Advance moves the clock forward
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
