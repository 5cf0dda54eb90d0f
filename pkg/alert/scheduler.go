// Package alert schedules delayed alert work and provides the alarm tone.
package alert

import (
	"sync"
	"time"
)

// Handle identifies one scheduled task.
type Handle struct {
	s     *Scheduler
	id    uint64
	gen   uint64
	timer *time.Timer
}

// Cancel stops the task if it has not run. Safe to call more than once.
func (h *Handle) Cancel() bool {
	if h == nil || h.s == nil {
		return false
	}
	h.s.mu.Lock()
	_, pending := h.s.pending[h.id]
	delete(h.s.pending, h.id)
	h.s.mu.Unlock()
	h.timer.Stop()
	return pending
}

// Scheduler runs functions after a delay. CancelAll invalidates every
// pending task, including ones whose timer already fired but whose
// callback has not yet taken the lock.
type Scheduler struct {
	mu      sync.Mutex
	gen     uint64
	nextID  uint64
	pending map[uint64]*Handle
	afterFn func(time.Duration, func()) *time.Timer
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: make(map[uint64]*Handle),
		afterFn: time.AfterFunc,
	}
}

// After schedules fn to run once after d on its own goroutine.
func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	h := &Handle{s: s, id: s.nextID, gen: s.gen}
	h.timer = s.afterFn(d, func() { s.fire(h, fn) })
	s.pending[h.id] = h
	return h
}

func (s *Scheduler) fire(h *Handle, fn func()) {
	s.mu.Lock()
	_, ok := s.pending[h.id]
	stale := h.gen != s.gen
	delete(s.pending, h.id)
	s.mu.Unlock()

	if !ok || stale {
		return
	}
	fn()
}

// CancelAll cancels every pending task.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	s.gen++
	n := len(s.pending)
	handles := s.pending
	s.pending = make(map[uint64]*Handle)
	s.mu.Unlock()

	for _, h := range handles {
		h.timer.Stop()
	}
	return n
}

// Pending returns how many tasks are waiting.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
