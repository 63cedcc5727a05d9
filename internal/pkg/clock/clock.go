// Package clock abstracts the wall clock so usecases can be tested with a
// fixed time.
package clock

import "time"

// Clocker returns the current time.
type Clocker interface {
	Now() time.Time
}

// System reads time.Now in UTC.
type System struct{}

func New() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
