// Package clock abstracts wall-clock access so snapshot timing is testable.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant; test use only.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
