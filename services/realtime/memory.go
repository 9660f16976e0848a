package realtime

import (
	"context"
	"sync"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

// MemoryChannel is an in-process Channel for single-node deployments and
// tests. Slow subscribers fall behind rather than block publishers; that is
// acceptable because events are advisory and clients re-resolve on receipt.
type MemoryChannel struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan models.AvailabilityEvent
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{subs: make(map[int]chan models.AvailabilityEvent)}
}

func (c *MemoryChannel) Publish(_ context.Context, ev models.AvailabilityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (c *MemoryChannel) Subscribe(_ context.Context) (<-chan models.AvailabilityEvent, func(), error) {
	ch := make(chan models.AvailabilityEvent, 64)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel, nil
}
