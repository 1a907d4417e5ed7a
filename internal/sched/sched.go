// Package sched runs UI-engine callbacks on a single logical thread.
//
// Every engine in this module (carousel, suggestion fetcher) mutates its state
// only from callbacks delivered by a Scheduler. Timers and network completions
// never touch engine state directly; they Post a callback instead, so two
// callbacks never interleave.
package sched

import "time"

// FrameInterval approximates one display frame
const FrameInterval = 16 * time.Millisecond

// Timer is a scheduled callback that can be stopped before it fires
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// timer was still pending.
	Stop() bool
}

// Scheduler delivers callbacks onto the owning loop
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs fn on the loop once d has elapsed
	AfterFunc(d time.Duration, fn func()) Timer
	// Post runs fn on the loop as soon as possible. Safe from any goroutine.
	Post(fn func())
}

// NextFrame schedules fn for the next frame
func NextFrame(s Scheduler, fn func()) Timer {
	return s.AfterFunc(FrameInterval, fn)
}
