// Package schedule runs deferred callbacks on the gallery's event loop.
//
// Callbacks never run on timer goroutines: a Scheduler hands them back to the
// loop that owns the state, and a cancelled callback never runs even if its
// timer already fired.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a scheduled callback. Calling it more than once is harmless.
type Cancel func()

// Scheduler runs fn on the owning event loop after d
type Scheduler interface {
	After(d time.Duration, fn func()) Cancel
}

// Slot holds at most one pending callback for a concern. Scheduling into a
// busy slot cancels the pending callback first, so rapid re-triggers never
// stack.
type Slot struct {
	sched  Scheduler
	cancel Cancel
	seq    uint64
}

// NewSlot binds a slot to a scheduler
func NewSlot(s Scheduler) *Slot {
	return &Slot{sched: s}
}

// Schedule replaces any pending callback with fn
func (s *Slot) Schedule(d time.Duration, fn func()) {
	s.Stop()
	s.seq++
	seq := s.seq
	s.cancel = s.sched.After(d, func() {
		if seq != s.seq {
			return
		}
		s.cancel = nil
		fn()
	})
}

// Stop cancels the pending callback, if any
func (s *Slot) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Pending reports whether a callback is waiting to run
func (s *Slot) Pending() bool {
	return s.cancel != nil
}

// Posting schedules with real timers and delivers callbacks through post,
// typically tea.Program.Send wrapped in a message. The loop must call Run
// on what it receives.
type Posting struct {
	post func(Task)
}

// Task is a callback delivered to the event loop
type Task struct {
	fn        func()
	cancelled *cancelFlag
}

// Run executes the task unless it was cancelled. Call it only on the loop.
func (t Task) Run() {
	if t.fn == nil || t.cancelled.isSet() {
		return
	}
	t.fn()
}

type cancelFlag struct {
	mu  sync.Mutex
	set bool
}

func (c *cancelFlag) mark() {
	c.mu.Lock()
	c.set = true
	c.mu.Unlock()
}

func (c *cancelFlag) isSet() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set
}

// NewPosting creates a scheduler that hands due tasks to post
func NewPosting(post func(Task)) *Posting {
	return &Posting{post: post}
}

// After implements Scheduler
func (p *Posting) After(d time.Duration, fn func()) Cancel {
	flag := &cancelFlag{}
	timer := time.AfterFunc(d, func() {
		p.post(Task{fn: fn, cancelled: flag})
	})
	return func() {
		flag.mark()
		timer.Stop()
	}
}

// Manual is a deterministic Scheduler driven by Advance. It is meant for
// tests and for headless replays.
type Manual struct {
	now     time.Duration
	seq     uint64
	pending []*manualTask
}

type manualTask struct {
	at        time.Duration
	seq       uint64
	fn        func()
	cancelled bool
}

// NewManual creates a manual scheduler at time zero
func NewManual() *Manual {
	return &Manual{}
}

// After implements Scheduler
func (m *Manual) After(d time.Duration, fn func()) Cancel {
	m.seq++
	t := &manualTask{at: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return func() { t.cancelled = true }
}

// Advance moves the clock forward by d, running due callbacks in time order.
// Callbacks scheduled while advancing run too if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.fn()
	}
	m.now = target
}

// Now is the elapsed manual time
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending counts callbacks not yet run or cancelled
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.pending = live
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].seq < live[j].seq
	})
	if live[0].at > target {
		return nil
	}
	t := live[0]
	m.pending = live[1:]
	return t
}
