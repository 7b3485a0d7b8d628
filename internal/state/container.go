// Package state holds the application's reactive state containers.
//
// A container owns exactly one current immutable state value. Mutators
// replace the value (copy-on-write) and broadcast it synchronously to
// every subscriber in subscription order. Containers serialize whole
// mutations, emission included, under an internal write mutex, so
// overlapping mutators resolve last-write-wins and the emission order
// matches the commit order: the last value observers saw is always
// the value Get returns.
package state

import "sync"

// broadcaster fans a replaced state value out to subscribers. Late
// subscribers do not get a replay; they read the current value through
// the container's Get.
type broadcaster[T any] struct {
	mu     sync.Mutex
	nextID int
	order  []int
	subs   map[int]func(T)
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[int]func(T))}
}

// subscribe registers fn and returns its unsubscribe func.
func (b *broadcaster[T]) subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.order = append(b.order, id)
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		for i, existing := range b.order {
			if existing == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// emit delivers value to all current subscribers, synchronously, in
// subscription order.
func (b *broadcaster[T]) emit(value T) {
	b.mu.Lock()
	fns := make([]func(T), 0, len(b.subs))
	for _, id := range b.order {
		if fn, ok := b.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}
