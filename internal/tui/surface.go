package tui

import (
	"github.com/existflow/animeshelf/internal/event"
	"github.com/existflow/animeshelf/internal/sched"
)

// surface is a horizontally scrolling row of fixed-width cards measured in
// terminal cells. It plays the role of a browser scroll container for a
// carousel engine.
type surface struct {
	sched     sched.Scheduler
	width     int // visible cells
	itemWidth int
	count     int

	left   int
	target int
	anim   sched.Timer
	scroll event.Emitter[int]
}

func newSurface(s sched.Scheduler, itemWidth int) *surface {
	return &surface{sched: s, itemWidth: itemWidth}
}

func (s *surface) ClientWidth() int { return s.width }
func (s *surface) ScrollLeft() int { return s.left }
func (s *surface) ScrollWidth() int { return s.count * s.itemWidth }

func (s *surface) FirstItemWidth() (int, bool) {
	if s.count == 0 {
		return 0, false
	}
	return s.itemWidth, true
}

func (s *surface) OnScroll(fn func(left int)) (off func()) {
	return s.scroll.On(fn)
}

// ScrollTarget is where a running glide will stop, or the offset itself
func (s *surface) ScrollTarget() int { return s.target }

// maxLeft is the largest offset that still fills the viewport
func (s *surface) maxLeft() int {
	return max(0, s.ScrollWidth()-s.width)
}

// ScrollTo moves the row. Smooth scrolls glide over a few frames, emitting a
// scroll event per frame; instant scrolls emit one event on the next turn of
// the loop, the way a browser dispatches scroll asynchronously.
func (s *surface) ScrollTo(left int, smooth bool) {
	left = min(max(left, 0), s.maxLeft())
	s.target = left

	if !smooth {
		s.stop()
		if left == s.left {
			return
		}
		s.left = left
		s.sched.Post(func() { s.scroll.Emit(s.left) })
		return
	}
	if s.anim == nil {
		s.anim = sched.NextFrame(s.sched, s.glide)
	}
}

func (s *surface) glide() {
	s.anim = nil
	d := s.target - s.left
	if d == 0 {
		return
	}
	step := d / 3
	if step == 0 {
		step = d
	}
	s.left += step
	s.scroll.Emit(s.left)
	if s.left != s.target {
		s.anim = sched.NextFrame(s.sched, s.glide)
	}
}

func (s *surface) stop() {
	if s.anim != nil {
		s.anim.Stop()
		s.anim = nil
	}
}

// setCount updates the number of cards. The owning engine pulls the offset
// back into range on its next measurement.
func (s *surface) setCount(n int) {
	s.count = n
}

// window fans terminal resizes out to mounted carousels
type window struct {
	resize event.Emitter[event.Size]
}

func (w *window) OnResize(fn func(event.Size)) (off func()) {
	return w.resize.On(fn)
}

// document fans mouse presses out to components that dismiss on outside clicks
type document struct {
	pointer event.Emitter[event.Pointer]
}

func (d *document) OnPointerDown(fn func(event.Pointer)) (off func()) {
	return d.pointer.On(fn)
}
