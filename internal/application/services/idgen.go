package services

import (
	"sync"
	"time"
)

// IDGenerator hands out millisecond-timestamp ids that are strictly
// increasing within the process, even when called within the same
// millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator that never returns a value <= floor
func NewIDGenerator(floor int64) *IDGenerator {
	return &IDGenerator{last: floor, now: time.Now}
}

// Next returns the next id
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe raises the floor to id if it is larger
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
