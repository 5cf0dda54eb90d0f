package attention

import "time"

// Clock tracks elapsed session time.
type Clock struct {
	start   time.Time
	running bool
}

// Start records now as the session start.
func (c *Clock) Start(now time.Time) {
	c.start = now
	c.running = true
}

// Stop clears the clock. Safe to call when stopped.
func (c *Clock) Stop() {
	c.start = time.Time{}
	c.running = false
}

// Running reports whether the clock was started.
func (c *Clock) Running() bool { return c.running }

// StartedAt returns the start time, if running.
func (c *Clock) StartedAt() (time.Time, bool) {
	return c.start, c.running
}

// Elapsed returns whole seconds since Start, 0 when stopped.
func (c *Clock) Elapsed(now time.Time) int {
	if !c.running {
		return 0
	}
	d := now.Sub(c.start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
