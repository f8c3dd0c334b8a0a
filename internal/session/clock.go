package session

import "sync/atomic"

// SeqClock hands out strictly increasing seq numbers.
type SeqClock interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock for ordering edits and revisions.
//
// Safe for concurrent use (atomic operations), although a Session only calls
// it from one goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used when resuming a stored graph.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
