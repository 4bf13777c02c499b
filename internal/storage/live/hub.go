// Package live fans out snapshots to in-process subscribers, keyed by topic.
// It backs the live-query subscriptions of the storage layer.
package live

import "sync"

// Hub delivers published values to the subscribers of a topic.
// Callbacks run on the publisher's goroutine, outside the hub lock; they
// may be invoked concurrently by concurrent publishers.
type Hub[T any] struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func(T)
}

// NewHub creates an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[string]map[int]func(T))}
}

// Subscribe registers fn for topic. The returned function removes it and is
// safe to call more than once.
func (h *Hub[T]) Subscribe(topic string, fn func(T)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]func(T))
	}
	h.subs[topic][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[topic], id)
			if len(h.subs[topic]) == 0 {
				delete(h.subs, topic)
			}
		})
	}
}

// Publish calls every subscriber of topic with v.
func (h *Hub[T]) Publish(topic string, v T) {
	h.mu.Lock()
	fns := make([]func(T), 0, len(h.subs[topic]))
	for _, fn := range h.subs[topic] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Subscribers returns the number of subscribers of topic.
func (h *Hub[T]) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}
