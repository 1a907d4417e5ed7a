package sched

import (
	"sort"
	"sync"
	"time"
)

// Manual is a virtual-clock Scheduler for tests. Time only moves when
// Advance is called; posted callbacks run on the goroutine that calls
// Advance, RunPosted or WaitPosted.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
	posted []func()
	signal chan struct{}
}

type manualTimer struct {
	m       *Manual
	at      time.Time
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true
	for i, v := range t.m.timers {
		if v == t {
			t.m.timers = append(t.m.timers[:i], t.m.timers[i+1:]...)
			return true
		}
	}
	return false
}

// NewManual creates a scheduler whose clock starts at start
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, signal: make(chan struct{}, 1)}
}

// Now returns the virtual time
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers fn to run once the clock passes now+d
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Post queues fn; it runs on the next Advance, RunPosted or WaitPosted
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.posted = append(m.posted, fn)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Advance moves the clock forward by d, firing due timers in order
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.RunPosted()

		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			break
		}
		next.stopped = true
		m.now = next.at
		m.mu.Unlock()

		next.fn()
	}
	m.RunPosted()
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if len(m.timers) == 0 || m.timers[0].at.After(target) {
		return nil
	}
	next := m.timers[0]
	m.timers = m.timers[1:]
	return next
}

// RunPosted runs queued callbacks, including ones they post, and
// reports how many ran
func (m *Manual) RunPosted() int {
	ran := 0
	for {
		m.mu.Lock()
		batch := m.posted
		m.posted = nil
		m.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// WaitPosted blocks until at least one callback has been posted (for
// example by a network goroutine), then runs the queue. It returns false
// on timeout.
func (m *Manual) WaitPosted(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if m.RunPosted() > 0 {
			return true
		}
		select {
		case <-m.signal:
		case <-deadline.C:
			return m.RunPosted() > 0
		}
	}
}

// PendingTimers returns the number of timers that have not fired or stopped
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
