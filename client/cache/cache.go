package cache

import (
	"sync"
)

// Cache is the client-side singleton: a map of named datasets patched by
// both periodic fetches and socket pushes. Each mutation carries the server
// timestamp as a version; a patch older than the dataset's version is
// dropped, so a stale push cannot overwrite a fresher periodic fetch.
// Otherwise last-writer-wins on the in-memory map.
type Cache struct {
	mu       sync.Mutex
	datasets map[string]*dataset

	obsMu     sync.Mutex
	observers map[int]func(key string)
	nextObs   int

	histCap int
}

type dataset struct {
	ring    *Ring
	version int64
}

func New(historyCap int) *Cache {
	return &Cache{
		datasets:  make(map[string]*dataset),
		observers: make(map[int]func(string)),
		histCap:   historyCap,
	}
}

func (c *Cache) ds(key string) *dataset {
	d, ok := c.datasets[key]
	if !ok {
		d = &dataset{ring: NewRing(c.histCap)}
		c.datasets[key] = d
	}
	return d
}

// Replace installs a full dataset (periodic fetch path).
func (c *Cache) Replace(key string, items []interface{}, version int64) bool {
	c.mu.Lock()
	d := c.ds(key)
	if version < d.version {
		c.mu.Unlock()
		return false
	}
	d.ring.Replace(items)
	d.version = version
	c.mu.Unlock()

	c.notify(key)
	return true
}

// Prepend pushes one new item to the front of a dataset (socket push path,
// e.g. a friend's new story), capped at the history length.
func (c *Cache) Prepend(key string, item interface{}, version int64) bool {
	c.mu.Lock()
	d := c.ds(key)
	if version < d.version {
		c.mu.Unlock()
		return false
	}
	d.ring.Prepend(item)
	d.version = version
	c.mu.Unlock()

	c.notify(key)
	return true
}

// Patch mutates a single entry in place (e.g. one friend's location or
// online flag).
func (c *Cache) Patch(key string, version int64, match func(interface{}) bool, fn func(interface{}) interface{}) bool {
	c.mu.Lock()
	d := c.ds(key)
	if version < d.version {
		c.mu.Unlock()
		return false
	}
	ok := d.ring.Patch(match, fn)
	if ok {
		d.version = version
	}
	c.mu.Unlock()

	if ok {
		c.notify(key)
	}
	return ok
}

// Get returns a snapshot of one dataset.
func (c *Cache) Get(key string) []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.datasets[key]
	if !ok {
		return nil
	}
	return d.ring.Items()
}

// Version returns the dataset's current version.
func (c *Cache) Version(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.datasets[key]
	if !ok {
		return 0
	}
	return d.version
}

// Subscribe registers an observer notified synchronously after each
// mutation; the returned func unsubscribes.
func (c *Cache) Subscribe(fn func(key string)) (unsubscribe func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	return func() {
		c.obsMu.Lock()
		delete(c.observers, id)
		c.obsMu.Unlock()
	}
}

func (c *Cache) notify(key string) {
	c.obsMu.Lock()
	fns := make([]func(string), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}
