// Package clock provides the time source used for event stamping and period resolution.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in a fixed location.
type System struct {
	Location *time.Location
}

// Now returns the current time in c.Location, or local time when unset.
func (c System) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Fixed always returns the same instant. Set may move it.
type Fixed struct {
	T time.Time
}

// NewFixed returns a Fixed clock at t.
func NewFixed(t time.Time) *Fixed { return &Fixed{T: t} }

func (c *Fixed) Now() time.Time { return c.T }

// Set moves the clock to t.
func (c *Fixed) Set(t time.Time) { c.T = t }

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) { c.T = c.T.Add(d) }
