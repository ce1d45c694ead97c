// Package reactive provides the publish/subscribe primitives the storefront
// synchronizers use to expose their latest snapshots.
package reactive

import (
	"sync"
)

// Value holds the most recent snapshot of a stream and notifies observers when
// it is replaced. A snapshot is always replaced as a whole, never merged.
type Value[T any] struct {
	mu        sync.RWMutex
	current   T
	version   uint64
	observers map[uint64]func(T)
	nextID    uint64
}

// NewValue creates a Value seeded with initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current:   initial,
		observers: make(map[uint64]func(T)),
	}
}

// Get returns the latest snapshot.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.current
}

// Version returns how many times the snapshot has been replaced.
func (v *Value[T]) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.version
}

// Publish replaces the snapshot and calls every observer with it.
// Observers run on the publishing goroutine in no particular order.
func (v *Value[T]) Publish(next T) {
	v.mu.Lock()
	v.current = next
	v.version++
	observers := make([]func(T), 0, len(v.observers))
	for _, fn := range v.observers {
		observers = append(observers, fn)
	}
	v.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}

// Observe registers fn for future snapshots and returns a function removing it.
func (v *Value[T]) Observe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.observers[id] = fn
	v.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.observers, id)
			v.mu.Unlock()
		})
	}
}
