package attention

import (
	"fmt"
	"time"
)

// Escalation is the level reached by a continuous distraction run.
type Escalation int

const (
	EscalationNone Escalation = iota
	EscalationWarning
	EscalationAlarm
)

// String returns a lowercase name.
func (e Escalation) String() string {
	switch e {
	case EscalationWarning:
		return "warning"
	case EscalationAlarm:
		return "alarm"
	default:
		return "none"
	}
}

// MarshalText encodes the level by name.
func (e Escalation) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses a level name.
func (e *Escalation) UnmarshalText(b []byte) error {
	for _, lvl := range []Escalation{EscalationNone, EscalationWarning, EscalationAlarm} {
		if lvl.String() == string(b) {
			*e = lvl
			return nil
		}
	}
	return fmt.Errorf("attention: unknown escalation %q", b)
}

// Escalator raises one warning and then one alarm per uninterrupted
// distraction run.
type Escalator struct {
	warnAfter  time.Duration
	alarmAfter time.Duration

	inRun   bool
	since   time.Time
	warned  bool
	alarmed bool

	warnings int
	alarms   int
}

// NewEscalator creates an escalator from cfg.
func NewEscalator(cfg Config) *Escalator {
	return &Escalator{
		warnAfter:  cfg.WarnAfter,
		alarmAfter: cfg.AlarmAfter,
	}
}

// Update feeds one frame and returns the level newly reached on this frame,
// or EscalationNone. If a gap between frames crosses both thresholds at
// once, both counters advance and EscalationAlarm is returned.
func (e *Escalator) Update(now time.Time, distracted bool) Escalation {
	if !distracted {
		e.endRun()
		return EscalationNone
	}
	if !e.inRun {
		e.inRun = true
		e.since = now
		return EscalationNone
	}

	d := now.Sub(e.since)
	level := EscalationNone
	if d > e.warnAfter && !e.warned {
		e.warned = true
		e.warnings++
		level = EscalationWarning
	}
	if d > e.alarmAfter && !e.alarmed {
		e.alarmed = true
		e.alarms++
		level = EscalationAlarm
	}
	return level
}

// RunDuration returns how long the current run has lasted.
func (e *Escalator) RunDuration(now time.Time) time.Duration {
	if !e.inRun {
		return 0
	}
	return now.Sub(e.since)
}

// Counts returns warnings and alarms raised.
func (e *Escalator) Counts() (warnings, alarms int) {
	return e.warnings, e.alarms
}

// Reset ends any run and zeroes the counters.
func (e *Escalator) Reset() {
	e.endRun()
	e.warnings = 0
	e.alarms = 0
}

func (e *Escalator) endRun() {
	e.inRun = false
	e.since = time.Time{}
	e.warned = false
	e.alarmed = false
}
