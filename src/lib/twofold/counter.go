package twofold

import (
	"sync"
)

// Counter tallies served concatenations. Safe for concurrent use.
type Counter struct {
	requests int64
	elements int64
	sync.Mutex
}

func NewCounter() *Counter {
	return &Counter{}
}

// Record notes one request that produced n output elements.
func (c *Counter) Record(n int) {
	c.Lock()
	defer c.Unlock()
	c.requests++
	c.elements += int64(n)
}

func (c *Counter) Snapshot() (requests, elements int64) {
	c.Lock()
	defer c.Unlock()
	return c.requests, c.elements
}
