// Package clock abstracts the current time so status derivation and
// numbering can be tested against fixed dates.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// New returns a Clock reading the system time in loc. A nil loc means UTC.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed is a Clock stuck at a single instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
