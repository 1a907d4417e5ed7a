package sched

import (
	"context"
	"sync"
	"time"
)

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() bool {
	return r.t.Stop()
}

// Loop is a Scheduler that runs callbacks on the goroutine calling Run
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

// NewLoop creates a loop; callbacks queue until Run is called
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Now returns wall-clock time
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn on the loop after d
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, func() { l.Post(fn) })}
}

// Post queues fn. It never blocks, so callbacks may post further callbacks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes queued callbacks until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.drain()
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// Bridge is a Scheduler whose callbacks are delivered by an external event
// loop, such as a bubbletea program. Posts made before Attach are buffered.
type Bridge struct {
	mu      sync.Mutex
	deliver func(func())
	backlog []func()
}

// NewBridge creates an unattached bridge
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the delivery function and flushes buffered posts through it
func (b *Bridge) Attach(deliver func(func())) {
	b.mu.Lock()
	b.deliver = deliver
	backlog := b.backlog
	b.backlog = nil
	b.mu.Unlock()

	for _, fn := range backlog {
		deliver(fn)
	}
}

// Now returns wall-clock time
func (b *Bridge) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn for delivery after d
func (b *Bridge) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, func() { b.Post(fn) })}
}

// Post hands fn to the external loop
func (b *Bridge) Post(fn func()) {
	b.mu.Lock()
	deliver := b.deliver
	if deliver == nil {
		b.backlog = append(b.backlog, fn)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	deliver(fn)
}
