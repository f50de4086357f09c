package testutil

import (
	"fmt"
	"time"
)

// ManualClock is a wall clock that only moves when told to.
type ManualClock struct {
	now time.Time
}

// NewManualClock starts at a fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current instant.
func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// SequentialIDs hands out predictable instance ids: "aq-0001", "aq-0002", ...
type SequentialIDs struct {
	n int
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.n++
	return fmt.Sprintf("aq-%04d", g.n)
}
