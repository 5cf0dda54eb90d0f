package attention

// Tracker promotes sustained low-EAR runs to DROWSY and counts distracted
// frames.
type Tracker struct {
	drowsyThresh float64
	drowsyFrames int

	streak           int
	distractionCount int
}

// NewTracker creates a tracker from cfg.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		drowsyThresh: cfg.DrowsyThresh,
		drowsyFrames: cfg.DrowsyFrames,
	}
}

// Update applies one frame. It returns the possibly promoted result and
// whether a drowsy alert should be requested.
//
// The streak is a strict consecutive run: any frame at or above the drowsy
// threshold, or without a face, resets it.
func (t *Tracker) Update(r FrameResult) (FrameResult, bool) {
	if r.Status == StatusNoFace {
		t.streak = 0
		return r, false
	}

	alert := false
	if r.AvgEAR < t.drowsyThresh {
		t.streak++
		if t.streak >= t.drowsyFrames {
			r.Status = StatusDrowsy
			alert = true
		}
	} else {
		t.streak = 0
	}

	if r.Status == StatusDistracted || r.Status == StatusEyesClosed {
		t.distractionCount++
	}
	return r, alert
}

// Streak returns the current drowsy-frame streak.
func (t *Tracker) Streak() int { return t.streak }

// DistractionCount returns the distracted frames counted this session.
func (t *Tracker) DistractionCount() int { return t.distractionCount }

// Reset clears the streak and the counter.
func (t *Tracker) Reset() {
	t.streak = 0
	t.distractionCount = 0
}

// ResetStreak clears only the streak.
func (t *Tracker) ResetStreak() { t.streak = 0 }
