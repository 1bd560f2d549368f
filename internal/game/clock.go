package game

import (
	"fmt"
	"sync"
	"time"
)

// Clock counts a shared game time down one second per period.
// Once stopped it never fires again.
type Clock struct {
	mu        sync.Mutex
	remaining int
	period    time.Duration
	onExpire  func()
	running   bool
	stopped   bool
	done      chan struct{}
}

// NewClock creates a clock with the given number of seconds.
// onExpire runs once, outside the clock's lock, when the count reaches zero.
func NewClock(seconds int, period time.Duration, onExpire func()) *Clock {
	if period <= 0 {
		period = time.Second
	}
	return &Clock{
		remaining: seconds,
		period:    period,
		onExpire:  onExpire,
	}
}

// Start begins counting down on a ticker.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.running || c.stopped {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.period)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if c.Tick() {
					return
				}
			}
		}
	}()
}

// Stop halts the clock for good.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.done)
		c.running = false
	}
	c.stopped = true
}

// Tick removes one second. It returns true on the tick that expires the clock.
func (c *Clock) Tick() bool {
	c.mu.Lock()
	if c.stopped || c.remaining <= 0 {
		c.mu.Unlock()
		return false
	}
	c.remaining--
	expired := c.remaining == 0
	if expired {
		c.stopped = true
	}
	c.mu.Unlock()

	if expired && c.onExpire != nil {
		c.onExpire()
	}
	return expired
}

// Remaining returns the seconds left.
func (c *Clock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stopped reports whether the clock was stopped or ran out.
func (c *Clock) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// String formats the remaining time as m:ss.
func (c *Clock) String() string {
	r := c.Remaining()
	return fmt.Sprintf("%d:%02d", r/60, r%60)
}
