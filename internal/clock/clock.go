// Package clock abstracts "now" so streak and horizon computations are
// testable with pinned times.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }
