package store

import (
	"sync"
	"sync/atomic"

	"github.com/jpalmerr/tripwire/internal/snapshot"
)

// subscriberBuffer is the channel capacity for each subscriber.
const subscriberBuffer = 16

// Cell is a [Store] holding exactly one snapshot.
//
// The snapshot is kept behind an atomic pointer to an immutable copy, so
// [Cell.Current] never blocks on [Cell.Publish] and never observes a partially
// written value.
type Cell struct {
	current     atomic.Pointer[snapshot.Snapshot]
	subscribers map[chan snapshot.Snapshot]struct{}
	subMu       sync.RWMutex
}

// NewCell creates a Cell holding [snapshot.Default].
func NewCell() *Cell {
	c := &Cell{
		subscribers: make(map[chan snapshot.Snapshot]struct{}),
	}
	initial := snapshot.Default()
	c.current.Store(&initial)
	return c
}

// Current returns the current snapshot.
func (c *Cell) Current() snapshot.Snapshot {
	return *c.current.Load()
}

// Publish replaces the current snapshot with s and notifies all subscribers.
//
// s is copied before it is stored; later changes to the caller's variable do
// not reach the Cell.
func (c *Cell) Publish(s snapshot.Snapshot) {
	published := s
	c.current.Store(&published)

	c.notifySubscribers(published)
}

// Subscribe creates a new subscription and returns a channel for receiving
// snapshots.
//
// The returned channel has a small buffer. If it fills (slow consumer), new
// snapshots are dropped for this subscriber; [Cell.Current] always has the
// latest one.
//
// Caller must call [Cell.Unsubscribe] when done to prevent resource leaks.
func (c *Cell) Subscribe() <-chan snapshot.Snapshot {
	ch := make(chan snapshot.Snapshot, subscriberBuffer)

	c.subMu.Lock()
	c.subscribers[ch] = struct{}{}
	c.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (c *Cell) Unsubscribe(ch <-chan snapshot.Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for subCh := range c.subscribers {
		if subCh == ch {
			delete(c.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends s to all active subscribers without blocking.
func (c *Cell) notifySubscribers(s snapshot.Snapshot) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for ch := range c.subscribers {
		select {
		case ch <- s:
		default:
			// subscriber is slow, drop the message
		}
	}
}
