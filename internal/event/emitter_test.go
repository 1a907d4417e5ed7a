package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitter_CallsListenersInOrder(t *testing.T) {
	var e Emitter[int]
	var got []string

	e.On(func(v int) { got = append(got, "a") })
	e.On(func(v int) { got = append(got, "b") })
	e.Emit(1)

	require.Equal(t, []string{"a", "b"}, got)
	require.Equal(t, 2, e.Len())
}

func TestEmitter_OffIsIdempotent(t *testing.T) {
	var e Emitter[Size]
	calls := 0

	off := e.On(func(Size) { calls++ })
	keep := e.On(func(Size) {})
	defer keep()

	off()
	off()
	require.Equal(t, 1, e.Len())

	e.Emit(Size{Width: 10})
	require.Zero(t, calls)
}

func TestEmitter_ListenerRemovedDuringEmitStillRunsThisRound(t *testing.T) {
	var e Emitter[Pointer]
	var offB func()
	seen := 0

	e.On(func(Pointer) { offB() })
	offB = e.On(func(Pointer) { seen++ })

	e.Emit(Pointer{})
	require.Equal(t, 1, seen)

	e.Emit(Pointer{})
	require.Equal(t, 1, seen)
	require.Equal(t, 1, e.Len())
}

func TestEmitter_RepeatedMountUnmountDoesNotLeak(t *testing.T) {
	var e Emitter[Size]
	for i := 0; i < 100; i++ {
		off := e.On(func(Size) {})
		off()
	}
	require.Zero(t, e.Len())
}
