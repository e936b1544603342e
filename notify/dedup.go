package notify

import (
	"container/list"
	"sync"
)

// dedupCache is a bounded LRU set of notification ids that have already been
// presented. Bounding matters: a console session can stay open for days, and
// presentation-relevant duplicates only occur within a short window.
type dedupCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently seen
	seen     map[string]*list.Element
}

func newDedupCache(capacity int) *dedupCache {
	return &dedupCache{
		capacity: capacity,
		order:    list.New(),
		seen:     make(map[string]*list.Element),
	}
}

// checkAndSet records id and reports whether this is its first sighting.
// Check and insert happen under one lock so two concurrent deliveries of the
// same event cannot both win.
func (c *dedupCache) checkAndSet(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.seen[id]; ok {
		c.order.MoveToFront(el)
		return false
	}
	c.seen[id] = c.order.PushFront(id)
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.seen, oldest.Value.(string))
	}
	return true
}

func (c *dedupCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
