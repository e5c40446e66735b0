package store

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrHandleNotFound = errors.New("handle not found")
	ErrStaleHandle    = errors.New("handle refers to a released slot")
)

// Handle is a stable reference into an Arena. A handle stays comparable after its
// slot is released; the generation tells a released slot from a reused one.
type Handle struct {
	index      int
	generation uint32
}

// Nil is the zero handle. It never refers to a live slot.
var Nil = Handle{}

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool {
	return h == Nil
}

type slot[T any] struct {
	value      T
	generation uint32
	alive      bool
}

// Arena stores values behind generation checked handles. Slots are reused once
// released, so holders must always go through Get to check liveness.
type Arena[T any] struct {
	lock  sync.RWMutex
	slots []slot[T]
	free  []int
	count int
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{
		// index 0 is reserved so that the zero Handle is never valid.
		slots: make([]slot[T], 1),
	}
}

// Insert stores value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.count++

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.generation++
		s.value = value
		s.alive = true

		return Handle{index: idx, generation: s.generation}
	}

	a.slots = append(a.slots, slot[T]{value: value, generation: 1, alive: true})

	return Handle{index: len(a.slots) - 1, generation: 1}
}

// Get returns the value behind h and whether h is still live.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	var zero T
	if !a.validLocked(h) {
		return zero, false
	}

	return a.slots[h.index].value, true
}

// Alive reports whether h refers to a live slot.
func (a *Arena[T]) Alive(h Handle) bool {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.validLocked(h)
}

// Replace swaps the value behind a live handle.
func (a *Arena[T]) Replace(h Handle, value T) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if !a.validLocked(h) {
		return errors.Wrapf(ErrStaleHandle, "replace slot %d", h.index)
	}

	a.slots[h.index].value = value

	return nil
}

// Remove releases the slot behind h.
func (a *Arena[T]) Remove(h Handle) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if h.index <= 0 || h.index >= len(a.slots) {
		return ErrHandleNotFound
	}

	if !a.validLocked(h) {
		return errors.Wrapf(ErrStaleHandle, "remove slot %d", h.index)
	}

	var zero T

	s := &a.slots[h.index]
	s.value = zero
	s.alive = false
	a.free = append(a.free, h.index)
	a.count--

	return nil
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.count
}

// Each calls fn for every live slot in slot order. fn must not mutate the arena.
func (a *Arena[T]) Each(fn func(h Handle, value T) bool) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	for idx := 1; idx < len(a.slots); idx++ {
		s := a.slots[idx]
		if !s.alive {
			continue
		}

		if !fn(Handle{index: idx, generation: s.generation}, s.value) {
			return
		}
	}
}

func (a *Arena[T]) validLocked(h Handle) bool {
	if h.index <= 0 || h.index >= len(a.slots) {
		return false
	}

	s := a.slots[h.index]

	return s.alive && s.generation == h.generation
}
