package signals

import "sync"

// cell is the mutable holder for one signal's current JSON-shaped
// value. It is written only by the dispatch goroutine; reads and
// subscriptions may come from any goroutine.
type cell struct {
	name string

	mu    sync.RWMutex
	value any

	subMu  sync.Mutex
	subs   map[uint64]func(any)
	nextID uint64
}

func newCell(name string, initial any) *cell {
	return &cell{
		name:  name,
		value: initial,
		subs:  make(map[uint64]func(any)),
	}
}

// get returns the current value. Callers must treat it as immutable.
func (c *cell) get() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// set stores a new value and notifies subscribers. Uses
// copy-before-notify so no lock is held while callbacks run.
func (c *cell) set(v any) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()

	c.subMu.Lock()
	subs := make([]func(any), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// subscribe registers a change callback and returns its cancel func.
func (c *cell) subscribe(fn func(any)) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}
