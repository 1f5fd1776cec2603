package game

import "time"

// Clock supplies the current time to every handler. Injecting it keeps the
// per-frame timing math deterministic under test.
type Clock interface {
	Now() time.Time
}

// systemClock is the production clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() Clock { return systemClock{} }

// ManualClock is a test clock advanced explicitly by the harness.
type ManualClock struct {
	t time.Time
}

// NewManualClock starts a manual clock at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// Set jumps the clock to an absolute instant.
func (c *ManualClock) Set(t time.Time) { c.t = t }
