package debounce

import (
	"sync"
	"time"
)

// Group debounces values independently per key
type Group[K comparable, T any] struct {
	delay   time.Duration
	handler func(K, T)

	mu      sync.Mutex
	members map[K]*Debouncer[T]
}

// NewGroup creates a keyed debouncer
func NewGroup[K comparable, T any](delay time.Duration, handler func(K, T)) *Group[K, T] {
	return &Group[K, T]{
		delay:   delay,
		handler: handler,
		members: make(map[K]*Debouncer[T]),
	}
}

func (g *Group[K, T]) member(key K) *Debouncer[T] {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.members[key]
	if !ok {
		d = New(g.delay, func(v T) { g.handler(key, v) })
		g.members[key] = d
	}
	return d
}

// Push replaces the pending value for key and restarts its delay
func (g *Group[K, T]) Push(key K, v T) {
	g.member(key).Push(v)
}

// Flush immediately delivers the pending value for key
func (g *Group[K, T]) Flush(key K) bool {
	g.mu.Lock()
	d, ok := g.members[key]
	g.mu.Unlock()
	return ok && d.Flush()
}

// FlushAll delivers every pending value
func (g *Group[K, T]) FlushAll() int {
	g.mu.Lock()
	members := make([]*Debouncer[T], 0, len(g.members))
	for _, d := range g.members {
		members = append(members, d)
	}
	g.mu.Unlock()

	n := 0
	for _, d := range members {
		if d.Flush() {
			n++
		}
	}
	return n
}

// Forget cancels and drops the debouncer for key
func (g *Group[K, T]) Forget(key K) {
	g.mu.Lock()
	d, ok := g.members[key]
	delete(g.members, key)
	g.mu.Unlock()
	if ok {
		d.Stop()
	}
}

// Pending reports whether key has a value waiting
func (g *Group[K, T]) Pending(key K) bool {
	g.mu.Lock()
	d, ok := g.members[key]
	g.mu.Unlock()
	return ok && d.Pending()
}

// Stop cancels every pending value
func (g *Group[K, T]) Stop() {
	g.mu.Lock()
	members := g.members
	g.members = make(map[K]*Debouncer[T])
	g.mu.Unlock()
	for _, d := range members {
		d.Stop()
	}
}
