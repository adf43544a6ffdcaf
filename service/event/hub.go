package event

import (
	"sync"
)

// Listener handles a published event. Listeners are invoked synchronously
// from the publishing goroutine and must return quickly.
type Listener[T any] func(*Event[T])

// Hub fans events out to registered listeners
type Hub[T any] struct {
	mux       sync.RWMutex
	seq       int
	listeners map[int]Listener[T]
}

// NewHub creates a hub
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{listeners: make(map[int]Listener[T])}
}

// Subscribe registers a listener and returns a function removing it
func (h *Hub[T]) Subscribe(listener Listener[T]) func() {
	h.mux.Lock()
	h.seq++
	id := h.seq
	h.listeners[id] = listener
	h.mux.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mux.Lock()
			delete(h.listeners, id)
			h.mux.Unlock()
		})
	}
}

// Publish delivers the event to every listener
func (h *Hub[T]) Publish(e *Event[T]) {
	h.mux.RLock()
	listeners := make([]Listener[T], 0, len(h.listeners))
	for _, l := range h.listeners {
		listeners = append(listeners, l)
	}
	h.mux.RUnlock()
	for _, l := range listeners {
		l(e)
	}
}

// Len returns the number of listeners
func (h *Hub[T]) Len() int {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return len(h.listeners)
}
