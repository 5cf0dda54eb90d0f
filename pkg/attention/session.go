package attention

import (
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-vigil/pkg/landmark"
)

// Frame is one unit of input. Nil Landmarks means no face was detected.
type Frame struct {
	Landmarks landmark.Set
	At        time.Time
}

// Report is everything produced for one accepted frame.
type Report struct {
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
	Classification
	Alert      *AlertIntent `json:"alert,omitempty"`
	Escalation Escalation   `json:"escalation"`
}

// Snapshot is a read-only copy of session counters.
type Snapshot struct {
	ID               string       `json:"id"`
	Running          bool         `json:"running"`
	StartedAt        *time.Time   `json:"started_at,omitempty"`
	ElapsedSeconds   int          `json:"elapsed_seconds"`
	DrowsyFrames     int          `json:"drowsy_frames"`
	DistractionCount int          `json:"distraction_count"`
	DrowsyAlertCount int          `json:"drowsy_alert_count"`
	WarningCount     int          `json:"warning_count"`
	AlarmCount       int          `json:"alarm_count"`
	FramesProcessed  int          `json:"frames_processed"`
	LastAlert        *time.Time   `json:"last_alert,omitempty"`
	Last             *FrameResult `json:"last,omitempty"`
}

// Summary describes a finished (or ongoing) session.
type Summary struct {
	ID                    string        `json:"id"`
	Duration              time.Duration `json:"duration"`
	DistractionCount      int           `json:"distraction_count"`
	DrowsyAlertCount      int           `json:"drowsy_alert_count"`
	WarningCount          int           `json:"warning_count"`
	AlarmCount            int           `json:"alarm_count"`
	FramesProcessed       int           `json:"frames_processed"`
	DistractionsPerMinute float64       `json:"distractions_per_minute"`
}

// Session owns the state of one monitoring run, start to stop.
type Session struct {
	cfg Config

	id        string
	running   bool
	startedAt time.Time
	stoppedAt time.Time
	frames    int
	last      *FrameResult

	tracker   *Tracker
	debouncer *Debouncer
	escalator *Escalator
	clock     Clock
}

// NewSession creates a stopped session.
func NewSession(cfg Config) *Session {
	return &Session{
		cfg:       cfg,
		tracker:   NewTracker(cfg),
		debouncer: NewDebouncer(cfg),
		escalator: NewEscalator(cfg),
	}
}

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Running reports whether frames are being accepted.
func (s *Session) Running() bool { return s.running }

// ID returns the current or last session ID.
func (s *Session) ID() string { return s.id }

// AlertSeq returns the Seq of the latest alert this session, 0 if none.
func (s *Session) AlertSeq() int { return s.debouncer.Count() }

// Start resets all counters and begins accepting frames. Starting a
// running session restarts it.
func (s *Session) Start(now time.Time) string {
	s.id = uuid.NewString()
	s.running = true
	s.startedAt = now
	s.stoppedAt = time.Time{}
	s.frames = 0
	s.last = nil

	s.tracker.Reset()
	s.debouncer.Reset()
	s.escalator.Reset()
	s.clock.Start(now)
	return s.id
}

// Stop halts frame processing. Counters are kept for the summary and are
// only cleared by the next Start. Stopping a stopped session is a no-op
// and reports false.
func (s *Session) Stop(now time.Time) (Summary, bool) {
	if !s.running {
		return s.Summary(now), false
	}
	sum := s.Summary(now)
	s.running = false
	s.stoppedAt = now
	s.clock.Stop()
	s.tracker.ResetStreak()
	s.escalator.endRun()
	return sum, true
}

// ProcessFrame classifies one frame and advances the temporal state.
// Invalid landmarks return an error wrapping landmark.ErrInvalidInput and
// leave every counter and the last result untouched.
func (s *Session) ProcessFrame(f Frame) (Report, error) {
	if !s.running {
		return Report{}, ErrNotRunning
	}

	c, err := Classify(f.Landmarks, s.cfg)
	if err != nil {
		return Report{}, err
	}

	var alertRequested bool
	c.FrameResult, alertRequested = s.tracker.Update(c.FrameResult)

	r := Report{SessionID: s.id, At: f.At, Classification: c}
	if alertRequested {
		if intent, fired := s.debouncer.Request(f.At); fired {
			r.Alert = &intent
		}
	}
	r.Escalation = s.escalator.Update(f.At, c.Distracted || c.Status == StatusDrowsy)

	s.frames++
	last := c.FrameResult
	s.last = &last
	return r, nil
}

// Elapsed returns whole seconds since Start, 0 when stopped.
func (s *Session) Elapsed(now time.Time) int {
	return s.clock.Elapsed(now)
}

// Snapshot copies the current counters.
func (s *Session) Snapshot(now time.Time) Snapshot {
	warnings, alarms := s.escalator.Counts()
	snap := Snapshot{
		ID:               s.id,
		Running:          s.running,
		ElapsedSeconds:   s.clock.Elapsed(now),
		DrowsyFrames:     s.tracker.Streak(),
		DistractionCount: s.tracker.DistractionCount(),
		DrowsyAlertCount: s.debouncer.Count(),
		WarningCount:     warnings,
		AlarmCount:       alarms,
		FramesProcessed:  s.frames,
	}
	if start, ok := s.clock.StartedAt(); ok {
		snap.StartedAt = &start
	}
	if last := s.debouncer.LastAlert(); !last.IsZero() {
		snap.LastAlert = &last
	}
	if s.last != nil {
		last := *s.last
		snap.Last = &last
	}
	return snap
}

// Summary reports totals for the current session, or the last one if
// stopped.
func (s *Session) Summary(now time.Time) Summary {
	end := now
	if !s.running && !s.stoppedAt.IsZero() {
		end = s.stoppedAt
	}
	var d time.Duration
	if !s.startedAt.IsZero() && end.After(s.startedAt) {
		d = end.Sub(s.startedAt)
	}

	warnings, alarms := s.escalator.Counts()
	sum := Summary{
		ID:               s.id,
		Duration:         d,
		DistractionCount: s.tracker.DistractionCount(),
		DrowsyAlertCount: s.debouncer.Count(),
		WarningCount:     warnings,
		AlarmCount:       alarms,
		FramesProcessed:  s.frames,
	}
	if d > 0 {
		sum.DistractionsPerMinute = float64(sum.DistractionCount) / d.Minutes()
	}
	return sum
}
