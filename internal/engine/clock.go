package engine

import "sync/atomic"

// Clock is the driver's logical tick counter. Throttles are expressed in
// ticks, never in wall time, so replays of the same event sequence behave
// identically.
type Clock struct {
	seq atomic.Int64
}

// NewClock starts at tick zero.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt starts a clock at a given tick.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new tick.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last tick handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
