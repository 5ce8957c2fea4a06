package srs

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the UTC wall clock.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })
