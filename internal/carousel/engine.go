// Package carousel turns a list of anime into a horizontally paged view.
//
// The Engine owns the scroll offset of one list. It re-measures the layout on
// mount, on every resize and on every scroll, steps by whole pages, and
// mirrors the offset to storage so the list reopens where the user left it.
package carousel

import (
	"context"
	"strconv"
	"time"

	"github.com/existflow/animeshelf/internal/event"
	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/sched"
	"github.com/existflow/animeshelf/internal/storage"
	"github.com/existflow/animeshelf/internal/viewport"
)

const (
	// DefaultSaveDelay is the quiet period before a scroll offset is written
	DefaultSaveDelay = 100 * time.Millisecond

	// maxRestoreAttempts bounds how many frames restore waits for a layout
	maxRestoreAttempts = 60
)

// Surface is the scroll container a carousel renders into
type Surface interface {
	viewport.Viewport
	viewport.Track
	// ScrollTo moves the viewport. Implementations emit a scroll event
	// once the offset has changed.
	ScrollTo(left int, smooth bool)
	OnScroll(fn func(left int)) (off func())
}

// Heading is implemented by surfaces that animate smooth scrolls.
// ScrollTarget is the offset the current animation settles on.
type Heading interface {
	ScrollTarget() int
}

// Window reports viewport size changes
type Window interface {
	OnResize(fn func(event.Size)) (off func())
}

// Options configures an Engine
type Options struct {
	// Key enables offset persistence under storage.CarouselKey(Key)
	Key       string
	Items     []model.Anime
	Store     storage.Store
	Scheduler sched.Scheduler
	Logger    *logger.Logger
	SaveDelay time.Duration
}

// ViewState is what a view needs to render one carousel
type ViewState struct {
	Items          []model.Anime
	Empty          bool
	Ready          bool
	ScrollOffset   int
	PageStepWidth  int
	ItemsPerPage   int
	IsOverflowing  bool
	CanStepBack    bool
	CanStepForward bool
}

// Engine is the controller of one carousel
type Engine struct {
	key       string
	items     []model.Anime
	store     storage.Store
	sched     sched.Scheduler
	log       *logger.Logger
	saveDelay time.Duration

	surface   Surface
	offScroll func()
	offResize func()
	mounted   bool

	metrics   viewport.Metrics
	offset    int
	save      *sched.Slot
	saved     int
	hasSaved  bool
	restore   sched.Timer
	attempts  int
	restoreTo int
}

// New creates an unmounted engine
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	if opts.Key != "" {
		log = log.WithFields(logger.F("carousel", opts.Key))
	}
	delay := opts.SaveDelay
	if delay <= 0 {
		delay = DefaultSaveDelay
	}

	e := &Engine{
		key:       opts.Key,
		items:     opts.Items,
		store:     opts.Store,
		sched:     opts.Scheduler,
		log:       log,
		saveDelay: delay,
		metrics:   viewport.Compute(viewport.Dimensions{}),
	}
	if e.sched != nil {
		e.save = sched.NewSlot(e.sched)
	}
	return e
}

// Key returns the persistence key, empty when not persisted
func (e *Engine) Key() string {
	return e.key
}

// Mount attaches the engine to a rendered surface. It registers the scroll
// and resize listeners, measures, and restores a persisted offset before
// returning when the layout is already measurable.
func (e *Engine) Mount(s Surface, w Window) {
	if e.mounted {
		e.Unmount()
	}
	e.surface = s
	e.mounted = true
	e.offScroll = s.OnScroll(func(int) { e.OnScroll() })
	if w != nil {
		e.offResize = w.OnResize(func(event.Size) { e.OnResize() })
	}

	e.measure()
	e.beginRestore()
}

// Unmount releases listeners, cancels a pending restore and writes any
// offset still waiting for its quiet period. Safe to call more than once.
func (e *Engine) Unmount() {
	if !e.mounted {
		return
	}
	if e.restore != nil {
		e.restore.Stop()
		e.restore = nil
	}
	if e.save != nil {
		e.save.Flush()
	}
	if e.offScroll != nil {
		e.offScroll()
		e.offScroll = nil
	}
	if e.offResize != nil {
		e.offResize()
		e.offResize = nil
	}
	e.mounted = false
	e.surface = nil
}

// Mounted reports whether the engine is attached to a surface
func (e *Engine) Mounted() bool {
	return e.mounted
}

// OnScroll handles a scroll event from the surface
func (e *Engine) OnScroll() {
	e.measure()
	if e.key == "" || e.store == nil || e.save == nil {
		return
	}
	e.save.Schedule(e.saveDelay, e.persist)
}

// OnResize handles a window resize
func (e *Engine) OnResize() {
	e.measure()
	e.clampOffset()
}

// StepBack scrolls one page back. It returns false when already at the start.
func (e *Engine) StepBack() bool {
	return e.step(-1)
}

// StepForward scrolls one page forward. It returns false at the end.
func (e *Engine) StepForward() bool {
	return e.step(1)
}

func (e *Engine) step(dir int) bool {
	if e.surface == nil || len(e.items) == 0 {
		return false
	}
	e.measure()

	if dir < 0 && !e.metrics.CanStepBack {
		return false
	}
	if dir > 0 && !e.metrics.CanStepForward {
		return false
	}

	base := e.stepBase()
	target := clamp(base+dir*e.metrics.PageStepWidth, 0, e.metrics.MaxScrollLeft)
	if target == base {
		return false
	}
	e.surface.ScrollTo(target, true)
	return true
}

// stepBase is the offset a page step starts from: where a running smooth
// scroll is heading, or else the current offset snapped to the item grid.
// The track end is kept as is, since the last page is rarely aligned.
func (e *Engine) stepBase() int {
	if h, ok := e.surface.(Heading); ok {
		return clamp(h.ScrollTarget(), 0, e.metrics.MaxScrollLeft)
	}
	base := e.offset
	w := e.metrics.ItemWidth
	if base >= e.metrics.MaxScrollLeft || w <= 0 {
		return base
	}
	return min((base+w/2)/w*w, e.metrics.MaxScrollLeft)
}

// HandleKey maps left/right to page steps while the carousel has focus.
// It reports whether the key was consumed.
func (e *Engine) HandleKey(key string, focused bool) bool {
	if !focused {
		return false
	}
	switch key {
	case "left":
		e.StepBack()
		return true
	case "right":
		e.StepForward()
		return true
	}
	return false
}

// SetItems replaces the list and re-measures
func (e *Engine) SetItems(items []model.Anime) {
	e.items = items
	e.measure()
	e.clampOffset()
}

// Items returns the current list
func (e *Engine) Items() []model.Anime {
	return e.items
}

// State returns the state derived from the latest measurement
func (e *Engine) State() ViewState {
	m := e.metrics
	return ViewState{
		Items:          e.items,
		Empty:          len(e.items) == 0,
		Ready:          m.Ready,
		ScrollOffset:   e.offset,
		PageStepWidth:  m.PageStepWidth,
		ItemsPerPage:   m.ItemsPerPage,
		IsOverflowing:  m.IsOverflowing,
		CanStepBack:    m.CanStepBack,
		CanStepForward: m.CanStepForward,
	}
}

func (e *Engine) measure() {
	if e.surface == nil {
		e.metrics = viewport.Compute(viewport.Dimensions{})
		return
	}
	e.metrics = viewport.Measure(e.surface, e.surface)
	e.offset = e.surface.ScrollLeft()
}

// clampOffset pulls the viewport back inside the track after it shrank
func (e *Engine) clampOffset() {
	if e.surface == nil || !e.metrics.Ready {
		return
	}
	if e.offset > e.metrics.MaxScrollLeft {
		e.surface.ScrollTo(e.metrics.MaxScrollLeft, false)
	}
}

func (e *Engine) beginRestore() {
	if e.key == "" || e.store == nil {
		return
	}

	raw, ok, err := e.store.Get(context.Background(), storage.CarouselKey(e.key))
	if err != nil {
		e.log.Warn("Failed to read carousel offset", logger.F("error", err))
		return
	}
	if !ok {
		return
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		e.log.Warn("Ignoring corrupt carousel offset", logger.F("value", raw))
		return
	}

	e.saved, e.hasSaved = offset, true
	e.restoreTo = offset
	e.attempts = 0
	e.tryRestore()
}

func (e *Engine) tryRestore() {
	e.restore = nil
	if !e.mounted {
		return
	}

	e.measure()
	if !e.metrics.Ready {
		e.attempts++
		if e.attempts >= maxRestoreAttempts || e.sched == nil {
			e.log.Warn("Gave up restoring carousel offset", logger.F("attempts", e.attempts))
			return
		}
		e.restore = sched.NextFrame(e.sched, e.tryRestore)
		return
	}

	target := clamp(e.restoreTo, 0, e.metrics.MaxScrollLeft)
	if target != e.offset {
		e.surface.ScrollTo(target, false)
	}
	e.measure()
	e.log.Debug("Restored carousel offset", logger.F("offset", target))
}

func (e *Engine) persist() {
	if e.hasSaved && e.saved == e.offset {
		return
	}
	value := e.offset
	if err := e.store.Set(context.Background(), storage.CarouselKey(e.key), strconv.Itoa(value)); err != nil {
		e.log.Warn("Failed to save carousel offset", logger.F("error", err))
		return
	}
	e.saved, e.hasSaved = value, true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
