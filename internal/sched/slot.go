package sched

import "time"

// Slot is a single-slot timer: scheduling while a callback is pending
// replaces it. Slot must only be used from the scheduler's loop.
type Slot struct {
	s     Scheduler
	gen   uint64
	timer Timer
	fn    func()
}

// NewSlot creates an empty slot bound to s
func NewSlot(s Scheduler) *Slot {
	return &Slot{s: s}
}

// Schedule cancels any pending callback and schedules fn after d
func (sl *Slot) Schedule(d time.Duration, fn func()) {
	sl.Cancel()

	sl.gen++
	gen := sl.gen
	sl.fn = fn
	sl.timer = sl.s.AfterFunc(d, func() {
		// A real timer may have fired and queued this callback right
		// before Cancel or Schedule ran; the generation check drops it.
		if gen != sl.gen || sl.fn == nil {
			return
		}
		run := sl.fn
		sl.fn = nil
		sl.timer = nil
		run()
	})
}

// Cancel drops the pending callback and reports whether one existed
func (sl *Slot) Cancel() bool {
	pending := sl.fn != nil
	if sl.timer != nil {
		sl.timer.Stop()
	}
	sl.gen++
	sl.timer = nil
	sl.fn = nil
	return pending
}

// Flush runs the pending callback immediately, if any
func (sl *Slot) Flush() bool {
	run := sl.fn
	if run == nil {
		return false
	}
	sl.Cancel()
	run()
	return true
}

// Pending reports whether a callback is waiting to fire
func (sl *Slot) Pending() bool {
	return sl.fn != nil
}
