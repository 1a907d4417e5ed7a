package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/animeshelf/internal/event"
	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/sched"
)

const wait = 2 * time.Second

// countingSource answers immediately and records every query
type countingSource struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (s *countingSource) Autocomplete(_ context.Context, q string) ([]model.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	return []model.Suggestion{{ID: len(s.queries), Title: q}}, nil
}

func (s *countingSource) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// gatedSource blocks each query until release(query) is called
type gatedSource struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func (s *gatedSource) gate(q string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gates == nil {
		s.gates = make(map[string]chan struct{})
	}
	ch, ok := s.gates[q]
	if !ok {
		ch = make(chan struct{})
		s.gates[q] = ch
	}
	return ch
}

func (s *gatedSource) release(q string) {
	close(s.gate(q))
}

func (s *gatedSource) Autocomplete(ctx context.Context, q string) ([]model.Suggestion, error) {
	select {
	case <-s.gate(q):
		return []model.Suggestion{{Title: q}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fakeDocument struct {
	pointers event.Emitter[event.Pointer]
}

func (d *fakeDocument) OnPointerDown(fn func(event.Pointer)) func() { return d.pointers.On(fn) }

func newFetcher(src Source, clock sched.Scheduler, mutate func(*Options)) *Fetcher {
	opts := Options{
		Source:    src,
		Scheduler: clock,
		Logger:    logger.Discard(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func titles(s Snapshot) []string {
	out := make([]string, 0, len(s.Suggestions))
	for _, v := range s.Suggestions {
		out = append(out, v.Title)
	}
	return out
}

func TestFetcher_CoalescesKeystrokes(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &countingSource{}
	f := newFetcher(src, clock, nil)
	defer f.Close()

	for _, q := range []string{"n", "na", "nar", "naru", "narut"} {
		f.Input(q)
		clock.Advance(50 * time.Millisecond)
	}
	require.Empty(t, src.calls())
	require.Equal(t, Debouncing, f.Snapshot().Phase)

	clock.Advance(DefaultDelay)
	require.True(t, clock.WaitPosted(wait))
	require.Equal(t, []string{"narut"}, src.calls())
	require.Equal(t, []string{"narut"}, titles(f.Snapshot()))
	require.Equal(t, Idle, f.Snapshot().Phase)

	f.Input("naruto")
	clock.Advance(DefaultDelay)
	require.True(t, clock.WaitPosted(wait))
	require.Equal(t, []string{"narut", "naruto"}, src.calls())
}

func TestFetcher_ShortQueryNeverFetches(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &countingSource{}
	f := newFetcher(src, clock, nil)
	defer f.Close()

	f.Input("n")
	f.Input(" a ")
	clock.Advance(time.Second)
	require.Empty(t, src.calls())
	require.Equal(t, Idle, f.Snapshot().Phase)
}

func TestFetcher_LastRequestWins(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &gatedSource{}
	f := newFetcher(src, clock, nil)
	defer f.Close()

	for _, q := range []string{"one", "two", "three"} {
		f.Input(q)
		clock.Advance(DefaultDelay)
	}
	require.Equal(t, Fetching, f.Snapshot().Phase)
	require.Equal(t, uint64(3), f.Snapshot().Token)

	src.release("three")
	require.True(t, clock.WaitPosted(wait))
	require.Equal(t, []string{"three"}, titles(f.Snapshot()))
	require.Equal(t, Idle, f.Snapshot().Phase)

	src.release("one")
	require.True(t, clock.WaitPosted(wait))
	require.Equal(t, []string{"three"}, titles(f.Snapshot()))

	src.release("two")
	require.True(t, clock.WaitPosted(wait))
	require.Equal(t, []string{"three"}, titles(f.Snapshot()))
}

func TestFetcher_ErrorClearsSuggestions(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &countingSource{}
	f := newFetcher(src, clock, nil)
	defer f.Close()

	f.Input("bleach")
	clock.Advance(DefaultDelay)
	require.True(t, clock.WaitPosted(wait))
	require.Len(t, f.Snapshot().Suggestions, 1)

	src.mu.Lock()
	src.err = errors.New("catalog unavailable")
	src.mu.Unlock()

	f.Input("bleach tybw")
	clock.Advance(DefaultDelay)
	require.True(t, clock.WaitPosted(wait))
	require.Empty(t, f.Snapshot().Suggestions)
	require.Equal(t, Idle, f.Snapshot().Phase)
}

func TestFetcher_ShorteningInvalidatesInFlight(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &gatedSource{}
	f := newFetcher(src, clock, nil)
	defer f.Close()

	f.Input("na")
	clock.Advance(DefaultDelay)
	f.Input("n")

	src.release("na")
	require.True(t, clock.WaitPosted(wait))
	require.Empty(t, f.Snapshot().Suggestions)
	require.Equal(t, Idle, f.Snapshot().Phase)
}

func TestFetcher_TypingDuringFetchKeepsDebouncing(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &gatedSource{}
	f := newFetcher(src, clock, nil)
	defer f.Close()

	f.Input("one")
	clock.Advance(DefaultDelay)
	f.Input("one piece")

	src.release("one")
	require.True(t, clock.WaitPosted(wait))
	require.Equal(t, []string{"one"}, titles(f.Snapshot()))
	require.Equal(t, Debouncing, f.Snapshot().Phase)

	clock.Advance(DefaultDelay)
	require.Equal(t, Fetching, f.Snapshot().Phase)
	src.release("one piece")
	require.True(t, clock.WaitPosted(wait))
	require.Equal(t, []string{"one piece"}, titles(f.Snapshot()))
}

func TestFetcher_DismissOnOutsidePointer(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &countingSource{}
	doc := &fakeDocument{}
	f := newFetcher(src, clock, func(o *Options) {
		o.Document = doc
		o.Bounds = func(p event.Pointer) bool { return p.Y < 5 }
	})
	defer f.Close()

	f.Input("monster")
	clock.Advance(DefaultDelay)
	require.True(t, clock.WaitPosted(wait))
	require.Len(t, f.Snapshot().Suggestions, 1)

	doc.pointers.Emit(event.Pointer{X: 3, Y: 2})
	require.Len(t, f.Snapshot().Suggestions, 1)

	doc.pointers.Emit(event.Pointer{X: 3, Y: 12})
	require.Empty(t, f.Snapshot().Suggestions)
	require.Equal(t, "monster", f.Snapshot().Query)
}

func TestFetcher_DismissCancelsPendingDebounce(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &countingSource{}
	f := newFetcher(src, clock, nil)
	defer f.Close()

	f.Input("berserk")
	f.Dismiss()
	clock.Advance(time.Second)

	require.Empty(t, src.calls())
	require.Equal(t, Idle, f.Snapshot().Phase)
	require.Zero(t, clock.PendingTimers())
}

func TestFetcher_SelectSubmitsTitle(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &gatedSource{}
	var submitted []string
	f := newFetcher(src, clock, func(o *Options) {
		o.OnSubmit = func(q string) { submitted = append(submitted, q) }
	})
	defer f.Close()

	f.Input("naru")
	clock.Advance(DefaultDelay)

	f.Select(model.Suggestion{ID: 20, Title: "Naruto"})
	require.Equal(t, []string{"Naruto"}, submitted)
	require.Equal(t, "Naruto", f.Snapshot().Query)

	src.release("naru")
	require.True(t, clock.WaitPosted(wait))
	require.Empty(t, f.Snapshot().Suggestions, "response for the abandoned query is stale")
}

func TestFetcher_SubmitSkipsDebounce(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &countingSource{}
	var submitted []string
	f := newFetcher(src, clock, func(o *Options) {
		o.OnSubmit = func(q string) { submitted = append(submitted, q) }
	})
	defer f.Close()

	f.Input("steins")
	f.Submit()
	require.Equal(t, []string{"steins"}, submitted)

	clock.Advance(time.Second)
	require.Empty(t, src.calls())
	require.Empty(t, f.Snapshot().Suggestions)
}

func TestFetcher_OnChangeSeesEveryTransition(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &countingSource{}
	var phases []Phase
	f := newFetcher(src, clock, func(o *Options) {
		o.OnChange = func(s Snapshot) { phases = append(phases, s.Phase) }
	})
	defer f.Close()

	f.Input("akira")
	clock.Advance(DefaultDelay)
	require.True(t, clock.WaitPosted(wait))

	require.Equal(t, []Phase{Debouncing, Fetching, Idle}, phases)
}

func TestFetcher_CloseReleasesEverything(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	src := &gatedSource{}
	doc := &fakeDocument{}
	f := newFetcher(src, clock, func(o *Options) { o.Document = doc })

	require.Equal(t, 1, doc.pointers.Len())

	f.Input("dororo")
	clock.Advance(DefaultDelay)
	f.Input("dororo 2019")
	require.Equal(t, 1, clock.PendingTimers())

	f.Close()
	f.Close()
	require.Zero(t, doc.pointers.Len())
	require.Zero(t, clock.PendingTimers())

	// The in-flight request sees its context cancelled and the
	// completion is ignored.
	require.True(t, clock.WaitPosted(wait))
	require.Empty(t, f.Snapshot().Suggestions)

	f.Input("ignored")
	require.Zero(t, clock.PendingTimers())
}

func TestPhase_String(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "debouncing", Debouncing.String())
	require.Equal(t, "fetching", Fetching.String())
}
