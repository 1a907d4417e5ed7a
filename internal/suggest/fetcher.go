// Package suggest implements the search box autocomplete.
//
// A Fetcher coalesces keystrokes behind a single-slot debounce, sends at most
// one request per quiet period and applies only the response to the latest
// request. Responses are tagged with a monotonic token; anything that arrives
// for an older token is dropped.
package suggest

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/existflow/animeshelf/internal/event"
	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/sched"
)

const (
	DefaultDelay     = 300 * time.Millisecond
	DefaultMinLength = 2
)

// Source looks up suggestions for a partial query
type Source interface {
	Autocomplete(ctx context.Context, query string) ([]model.Suggestion, error)
}

// Document delivers pointer-down events from anywhere on screen
type Document interface {
	OnPointerDown(fn func(event.Pointer)) (off func())
}

// Phase is where the fetcher is in its request cycle
type Phase int

const (
	Idle Phase = iota
	Debouncing
	Fetching
)

func (p Phase) String() string {
	switch p {
	case Debouncing:
		return "debouncing"
	case Fetching:
		return "fetching"
	default:
		return "idle"
	}
}

// Snapshot is the observable state of a Fetcher
type Snapshot struct {
	Query       string
	Token       uint64
	Phase       Phase
	Suggestions []model.Suggestion
}

// Options configures a Fetcher
type Options struct {
	Source    Source
	Scheduler sched.Scheduler
	// Document and Bounds enable dismissal on pointer-down outside the box
	Document Document
	Bounds   func(event.Pointer) bool

	Delay     time.Duration
	MinLength int

	// OnSubmit receives the query on Enter or when a suggestion is picked
	OnSubmit func(query string)
	// OnChange is called after every state change
	OnChange func(Snapshot)

	Logger *logger.Logger
	Tracer trace.Tracer
}

// Fetcher is the autocomplete controller of one search box.
// All methods must be called from the scheduler's loop.
type Fetcher struct {
	opts   Options
	log    *logger.Logger
	tracer trace.Tracer

	ctx    context.Context
	cancel context.CancelFunc

	debounce   *sched.Slot
	offPointer func()
	closed     bool

	query       string
	token       uint64
	phase       Phase
	suggestions []model.Suggestion
}

// New creates a fetcher and, when a Document is given, starts listening for
// outside pointer-downs
func New(opts Options) *Fetcher {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/existflow/animeshelf/internal/suggest")
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &Fetcher{
		opts:     opts,
		log:      log.WithFields(logger.F("component", "suggest")),
		tracer:   tracer,
		ctx:      ctx,
		cancel:   cancel,
		debounce: sched.NewSlot(opts.Scheduler),
	}
	if opts.Document != nil {
		f.offPointer = opts.Document.OnPointerDown(f.onPointer)
	}
	return f
}

// Input records the current text of the search box
func (f *Fetcher) Input(text string) {
	if f.closed {
		return
	}
	f.query = text

	if f.long(text) {
		f.debounce.Schedule(f.opts.Delay, f.fire)
		f.phase = Debouncing
	} else {
		f.debounce.Cancel()
		f.invalidate()
		f.phase = Idle
	}
	f.notify()
}

// Select fills the box with a suggestion and submits it
func (f *Fetcher) Select(s model.Suggestion) {
	if f.closed {
		return
	}
	f.query = s.Title
	f.reset()
	f.notify()
	f.submit(s.Title)
}

// Submit sends the raw query, skipping the debounce
func (f *Fetcher) Submit() {
	if f.closed {
		return
	}
	f.reset()
	f.notify()
	f.submit(f.query)
}

// Dismiss hides the suggestions and drops any pending or in-flight request
func (f *Fetcher) Dismiss() {
	if f.closed {
		return
	}
	if f.phase == Idle && len(f.suggestions) == 0 {
		return
	}
	f.reset()
	f.notify()
}

// Close stops the fetcher. Later completions and events are ignored.
func (f *Fetcher) Close() {
	if f.closed {
		return
	}
	f.closed = true
	f.debounce.Cancel()
	f.invalidate()
	if f.offPointer != nil {
		f.offPointer()
		f.offPointer = nil
	}
	f.cancel()
}

// Snapshot returns a copy of the current state
func (f *Fetcher) Snapshot() Snapshot {
	return Snapshot{
		Query:       f.query,
		Token:       f.token,
		Phase:       f.phase,
		Suggestions: append([]model.Suggestion(nil), f.suggestions...),
	}
}

func (f *Fetcher) onPointer(p event.Pointer) {
	if f.opts.Bounds != nil && f.opts.Bounds(p) {
		return
	}
	f.Dismiss()
}

func (f *Fetcher) long(text string) bool {
	return len([]rune(strings.TrimSpace(text))) >= f.opts.MinLength
}

// invalidate makes every in-flight response stale and clears the list
func (f *Fetcher) invalidate() {
	f.token++
	f.suggestions = nil
}

func (f *Fetcher) reset() {
	f.debounce.Cancel()
	f.invalidate()
	f.phase = Idle
}

func (f *Fetcher) submit(query string) {
	if f.opts.OnSubmit != nil {
		f.opts.OnSubmit(query)
	}
}

func (f *Fetcher) notify() {
	if f.opts.OnChange != nil {
		f.opts.OnChange(f.Snapshot())
	}
}

func (f *Fetcher) fire() {
	if f.closed {
		return
	}
	if !f.long(f.query) {
		f.invalidate()
		f.phase = Idle
		f.notify()
		return
	}

	f.token++
	token := f.token
	query := strings.TrimSpace(f.query)
	f.phase = Fetching
	f.notify()

	go f.fetch(token, query)
}

// fetch runs off the loop and hands its result back through Post
func (f *Fetcher) fetch(token uint64, query string) {
	ctx, span := f.tracer.Start(f.ctx, "suggest.autocomplete", trace.WithAttributes(
		attribute.String("suggest.query", query),
		attribute.Int64("suggest.token", int64(token)),
	))
	started := time.Now()
	items, err := f.opts.Source.Autocomplete(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("suggest.results", len(items)))
	}
	span.End()

	elapsed := time.Since(started)
	f.opts.Scheduler.Post(func() {
		f.complete(token, query, items, err, elapsed)
	})
}

func (f *Fetcher) complete(token uint64, query string, items []model.Suggestion, err error, elapsed time.Duration) {
	if f.closed {
		return
	}
	current := token == f.token

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			f.log.Warn("Autocomplete failed", logger.F("query", query), logger.F("error", err))
		}
		f.suggestions = nil
		if current && !f.debounce.Pending() {
			f.phase = Idle
		}
		f.notify()
		return
	}

	if !current {
		f.log.Debug("Dropped stale suggestions", logger.F("token", token), logger.F("current", f.token))
		return
	}

	f.suggestions = items
	if !f.debounce.Pending() {
		f.phase = Idle
	}
	f.log.Debug("Applied suggestions",
		logger.F("query", query),
		logger.F("results", len(items)),
		logger.F("elapsed", elapsed.Round(time.Millisecond)),
	)
	f.notify()
}
