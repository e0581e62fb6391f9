package board

import "sync"

// Cache holds the current board for every reader of it. Changes go through
// Store or Update and are announced to subscribers after the lock is released.
type Cache struct {
	mu      sync.RWMutex
	current Board
	version uint64

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Board)
}

func NewCache(initial Board) *Cache {
	return &Cache{current: initial, subs: map[int]func(Board){}}
}

func (c *Cache) Load() Board {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Version increases on every change.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Cache) Store(b Board) {
	c.mu.Lock()
	c.current = b
	c.version++
	c.mu.Unlock()
	c.notify(b)
}

// Update replaces the board with fn(current) atomically and returns the result.
func (c *Cache) Update(fn func(Board) Board) Board {
	c.mu.Lock()
	next := fn(c.current)
	c.current = next
	c.version++
	c.mu.Unlock()
	c.notify(next)
	return next
}

// Subscribe registers fn for every later change. The returned func removes it.
func (c *Cache) Subscribe(fn func(Board)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Cache) notify(b Board) {
	c.subMu.Lock()
	fns := make([]func(Board), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(b)
	}
}
