// Package events allows for the registering and receiving of events.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// messageBuffer is how many events a subscriber may fall behind before
// events are dropped for it.
const messageBuffer = 100

// Events maintains a mapping of subscriber id and channels so goroutines
// can register and receive events.
type Events struct {
	mu      sync.RWMutex
	m       map[uuid.UUID]chan string
	dropped atomic.Uint64
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[uuid.UUID]chan string),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire registers a new subscriber and returns its id with the channel
// events are delivered on.
func (evt *Events) Acquire() (uuid.UUID, <-chan string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	id := uuid.New()
	ch := make(chan string, messageBuffer)
	evt.m[id] = ch

	return id, ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id uuid.UUID) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send formats the event and signals it to every registered channel. Send
// will not block waiting for a receiver on any given channel. The signature
// matches the event handlers of the blockchain packages.
func (evt *Events) Send(v string, args ...any) {
	s := fmt.Sprintf(v, args...)

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
			evt.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of registered channels.
func (evt *Events) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Dropped returns how many events were not delivered because a subscriber
// was not keeping up.
func (evt *Events) Dropped() uint64 {
	return evt.dropped.Load()
}
