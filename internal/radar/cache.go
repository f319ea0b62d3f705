package radar

import (
	"fmt"
	"sync"
	"time"
)

// tileKey builds the composite tile cache key.
func tileKey(at time.Time, z, x, y int) string {
	return fmt.Sprintf("%d/%d/%d/%d", at.UnixMilli(), z, x, y)
}

// tileCache is a thread-safe FIFO cache for encoded tiles. Eviction is
// insertion-order, not recency: the animation workload sweeps every cached
// tile once per loop, so recency carries no signal and FIFO is the simpler
// equivalent.
type tileCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*tileEntry
	head       *tileEntry // newest insertion
	tail       *tileEntry // oldest insertion, next to evict
}

type tileEntry struct {
	key   string
	value []byte
	prev  *tileEntry
	next  *tileEntry
}

func newTileCache(maxEntries int) *tileCache {
	return &tileCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*tileEntry),
	}
}

func (c *tileCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	// No promotion: lookups do not affect eviction order.
	return e.value, true
}

func (c *tileCache) put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		return
	}

	e := &tileEntry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *tileCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*tileEntry)
	c.head = nil
	c.tail = nil
}

func (c *tileCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *tileCache) addToFront(e *tileEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *tileCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	old := c.tail
	c.tail = old.prev
	if c.tail != nil {
		c.tail.next = nil
	} else {
		c.head = nil
	}
}
