package attention

import "time"

// AlertIntent asks collaborators to show a drowsy alert now and clear it
// after ClearAfter.
type AlertIntent struct {
	Seq        int           `json:"seq"`
	At         time.Time     `json:"at"`
	ClearAfter time.Duration `json:"clear_after"`
}

// Debouncer allows at most one alert per cooldown window.
type Debouncer struct {
	cooldown   time.Duration
	clearAfter time.Duration

	last  time.Time
	count int
}

// NewDebouncer creates a debouncer from cfg.
func NewDebouncer(cfg Config) *Debouncer {
	return &Debouncer{
		cooldown:   cfg.AlertCooldown,
		clearAfter: cfg.AlertClearAfter,
	}
}

// Request fires if more than the cooldown has passed since the last fired
// alert. The first request after Reset always fires. Requests older than the
// last alert never fire, so the last alert time only moves forward.
func (d *Debouncer) Request(now time.Time) (AlertIntent, bool) {
	if !d.last.IsZero() && now.Sub(d.last) <= d.cooldown {
		return AlertIntent{}, false
	}
	d.last = now
	d.count++
	return AlertIntent{Seq: d.count, At: now, ClearAfter: d.clearAfter}, true
}

// Count returns how many alerts fired.
func (d *Debouncer) Count() int { return d.count }

// LastAlert returns when the last alert fired, zero if none.
func (d *Debouncer) LastAlert() time.Time { return d.last }

// Reset forgets the last alert and zeroes the count.
func (d *Debouncer) Reset() {
	d.last = time.Time{}
	d.count = 0
}
