package event

import "sync"

// Size is the payload of a window resize
type Size struct {
	Width  int
	Height int
}

// Pointer is the payload of a pointer-down anywhere in the document
type Pointer struct {
	X int
	Y int
}

// Emitter is a registry of listeners for one event type.
// Listeners run in registration order on the caller's goroutine.
type Emitter[T any] struct {
	mu        sync.Mutex
	nextID    int
	order     []int
	listeners map[int]func(T)
}

// On registers fn and returns the function that removes it.
// The returned func is safe to call more than once; only the first call has effect.
func (e *Emitter[T]) On(fn func(T)) (off func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[int]func(T))
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.order = append(e.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Emitter[T]) remove(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.listeners, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Emit calls every listener registered at the time of the call
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	fns := make([]func(T), 0, len(e.order))
	for _, id := range e.order {
		fns = append(fns, e.listeners[id])
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of live listeners
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
