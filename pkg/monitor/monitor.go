// Package monitor runs an attention session on a single event loop.
//
// Frames, lifecycle commands, clock ticks and alert-clear timers are all
// funnelled into one goroutine, so the session itself needs no locking.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/alert"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/debug"
)

// ErrClosed is returned once the loop has exited.
var ErrClosed = errors.New("monitor: closed")

// Config holds monitor settings
type Config struct {
	Attention    attention.Config
	TickInterval time.Duration    // session clock poll rate
	QueueSize    int              // pending commands before callers block
	Now          func() time.Time // clock, for tests
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		Attention:    attention.DefaultConfig(),
		TickInterval: time.Second,
		QueueSize:    64,
		Now:          time.Now,
	}
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdStop
	cmdFrame
	cmdClear
)

type command struct {
	kind   cmdKind
	frame  attention.Frame
	intent attention.AlertIntent
	sessID string
	reply  chan result
}

type result struct {
	id      string
	report  attention.Report
	summary attention.Summary
	err     error
}

// Monitor owns one attention.Session and drives it from Run.
type Monitor struct {
	cfg     Config
	session *attention.Session
	sched   *alert.Scheduler
	sinks   []Sink

	cmds chan command
	done chan struct{}
	once sync.Once

	mu   sync.RWMutex
	snap attention.Snapshot
}

// New creates a monitor. Sinks receive every event in order.
func New(cfg Config, sinks ...Sink) *Monitor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Monitor{
		cfg:     cfg,
		session: attention.NewSession(cfg.Attention),
		sched:   alert.NewScheduler(),
		sinks:   sinks,
		cmds:    make(chan command, cfg.QueueSize),
		done:    make(chan struct{}),
	}
}

// Run processes commands until ctx is cancelled. A running session is
// stopped on exit.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()
	defer m.once.Do(func() { close(m.done) })

	log.Info("attention monitor started",
		"tick", m.cfg.TickInterval,
		"drowsy_frames", m.cfg.Attention.DrowsyFrames,
		"cooldown", m.cfg.Attention.AlertCooldown)

	for {
		select {
		case <-ctx.Done():
			m.stop()
			return ctx.Err()

		case c := <-m.cmds:
			res := m.handle(c)
			if c.reply != nil {
				c.reply <- res
			}

		case <-ticker.C:
			if !m.session.Running() {
				continue
			}
			snap := m.publish()
			for _, s := range m.sinks {
				s.OnTick(snap)
			}
		}
	}
}

func (m *Monitor) handle(c command) result {
	switch c.kind {
	case cmdStart:
		return result{id: m.start()}
	case cmdStop:
		sum, _ := m.stop()
		return result{summary: sum}
	case cmdFrame:
		r, err := m.frame(c.frame)
		return result{report: r, err: err}
	case cmdClear:
		m.clear(c.intent, c.sessID)
	}
	return result{}
}

func (m *Monitor) start() string {
	if m.session.Running() {
		m.stop()
	}
	id := m.session.Start(m.cfg.Now())
	log.Info("session started", "session", id)

	snap := m.publish()
	for _, s := range m.sinks {
		s.OnStart(snap)
	}
	return id
}

func (m *Monitor) stop() (attention.Summary, bool) {
	sum, stopped := m.session.Stop(m.cfg.Now())
	if !stopped {
		return sum, false
	}
	if n := m.sched.CancelAll(); n > 0 {
		log.Debug("cancelled pending alert clears", "count", n)
	}
	m.publish()

	log.Info("session stopped",
		"session", sum.ID,
		"duration", sum.Duration.Round(time.Second),
		"distractions", sum.DistractionCount,
		"drowsy_alerts", sum.DrowsyAlertCount,
		"warnings", sum.WarningCount,
		"alarms", sum.AlarmCount,
		"distractions_per_min", sum.DistractionsPerMinute)

	for _, s := range m.sinks {
		s.OnStop(sum)
	}
	return sum, true
}

func (m *Monitor) frame(f attention.Frame) (attention.Report, error) {
	if f.At.IsZero() {
		f.At = m.cfg.Now()
	}
	r, err := m.session.ProcessFrame(f)
	if err != nil {
		log.Debug("frame skipped", "error", err)
		return r, err
	}

	debug.FrameLog("frame",
		"status", r.Status.String(),
		"ear", r.AvgEAR,
		"distracted", r.Distracted)

	m.publish()
	for _, s := range m.sinks {
		s.OnFrame(r)
	}

	if r.Alert != nil {
		intent := *r.Alert
		log.Warn("drowsiness alert", "session", r.SessionID, "seq", intent.Seq)
		for _, s := range m.sinks {
			s.OnAlert(intent)
		}
		sessID := r.SessionID
		m.sched.After(intent.ClearAfter, func() {
			m.post(command{kind: cmdClear, intent: intent, sessID: sessID})
		})
	}

	switch r.Escalation {
	case attention.EscalationWarning:
		log.Warn("sustained distraction warning", "session", r.SessionID)
	case attention.EscalationAlarm:
		log.Warn("sustained distraction alarm", "session", r.SessionID)
	}
	return r, nil
}

// clear delivers a scheduled alert clear unless the session it belongs to
// has ended or a newer alert has replaced it.
func (m *Monitor) clear(intent attention.AlertIntent, sessID string) {
	if !m.session.Running() || m.session.ID() != sessID {
		return
	}
	if intent.Seq != m.session.AlertSeq() {
		debug.Log("stale alert clear skipped: seq=%d", intent.Seq)
		return
	}
	for _, s := range m.sinks {
		s.OnAlertClear(intent)
	}
}

func (m *Monitor) publish() attention.Snapshot {
	snap := m.session.Snapshot(m.cfg.Now())
	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()
	return snap
}

// post enqueues a command from a timer goroutine without blocking past
// loop exit.
func (m *Monitor) post(c command) {
	select {
	case m.cmds <- c:
	case <-m.done:
	}
}

func (m *Monitor) call(ctx context.Context, c command) (result, error) {
	c.reply = make(chan result, 1)
	select {
	case m.cmds <- c:
	case <-m.done:
		return result{}, ErrClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
	select {
	case res := <-c.reply:
		return res, res.err
	case <-m.done:
		return result{}, ErrClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// Start begins a new session, resetting all counters.
func (m *Monitor) Start(ctx context.Context) (string, error) {
	res, err := m.call(ctx, command{kind: cmdStart})
	return res.id, err
}

// Stop ends the current session and returns its summary. Stopping when
// nothing is running returns the last summary and no error.
func (m *Monitor) Stop(ctx context.Context) (attention.Summary, error) {
	res, err := m.call(ctx, command{kind: cmdStop})
	return res.summary, err
}

// Submit processes one frame. Errors wrapping landmark.ErrInvalidInput
// or attention.ErrNotRunning leave the session untouched.
func (m *Monitor) Submit(ctx context.Context, f attention.Frame) (attention.Report, error) {
	res, err := m.call(ctx, command{kind: cmdFrame, frame: f})
	return res.report, err
}

// Snapshot returns the most recently published counters.
func (m *Monitor) Snapshot() attention.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Done is closed when Run returns.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}
