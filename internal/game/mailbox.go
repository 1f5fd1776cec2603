package game

import (
	"sync"
	"time"
)

// Inbound is a deferred delivery: a closure the game loop runs once the due
// time passes. Network responses and the demo's artificial-latency server
// both arrive this way, so every store/bus mutation stays on the loop.
type Inbound struct {
	Due     time.Time
	Deliver func()
}

// Mailbox buffers Inbound entries produced off the game loop (the websocket
// reader) or scheduled for later (latency stubs). Drain runs due entries in
// post order on the loop.
type Mailbox struct {
	mu      sync.Mutex
	pending []Inbound
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Post queues a delivery for the next drain.
func (m *Mailbox) Post(deliver func()) {
	m.PostAt(time.Time{}, deliver)
}

// PostAt queues a delivery that stays pending until due.
func (m *Mailbox) PostAt(due time.Time, deliver func()) {
	m.mu.Lock()
	m.pending = append(m.pending, Inbound{Due: due, Deliver: deliver})
	m.mu.Unlock()
}

// Drain runs every due delivery in post order. Entries not yet due stay
// queued. Deliveries run outside the lock so they may post further entries.
func (m *Mailbox) Drain(now time.Time) {
	m.mu.Lock()
	var due, rest []Inbound
	for _, in := range m.pending {
		if in.Due.IsZero() || !in.Due.After(now) {
			due = append(due, in)
		} else {
			rest = append(rest, in)
		}
	}
	m.pending = rest
	m.mu.Unlock()

	for _, in := range due {
		in.Deliver()
	}
}

// Len returns the number of queued deliveries.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
