// Package flight coalesces concurrent identical requests: callers asking for
// the same key while a computation is in flight share its result instead of
// triggering duplicate work. Used to keep two curators hitting review on the
// same chapter from paying for two LLM calls.
package flight

import "sync"

type call[V any] struct {
	done chan struct{}
	val  V
	err  error
}

type Group[K comparable, V any] struct {
	mu    sync.Mutex
	calls map[K]*call[V]
}

func NewGroup[K comparable, V any]() *Group[K, V] {
	return &Group[K, V]{calls: make(map[K]*call[V])}
}

// Do runs fn for k unless an identical call is already in flight, in which
// case it waits for and returns that call's result. shared reports whether
// the result came from another caller's invocation.
func (g *Group[K, V]) Do(k K, fn func() (V, error)) (val V, err error, shared bool) {
	g.mu.Lock()
	if existing, ok := g.calls[k]; ok {
		g.mu.Unlock()
		<-existing.done
		return existing.val, existing.err, true
	}

	c := &call[V]{done: make(chan struct{})}
	g.calls[k] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.calls, k)
	close(c.done)
	g.mu.Unlock()

	return c.val, c.err, false
}
