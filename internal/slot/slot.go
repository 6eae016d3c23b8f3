// Package slot implements the time-window arithmetic behind conflict
// checks and availability grids.  All times are zero-padded 24h HH:MM
// strings on a single calendar day, so lexicographic comparison is
// chronological comparison and no timezone handling is needed.
package slot

import (
	"errors"
	"time"
)

const (
	// TimeLayout is the wire format for times of day.
	TimeLayout = "15:04"
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
)

var (
	ErrBadTime  = errors.New("time must be HH:MM in 24h format")
	ErrBadDate  = errors.New("date must be YYYY-MM-DD")
	ErrBadOrder = errors.New("start_time must be before end_time")
)

// Interval is a half-open time window [Start, End) within one day.
type Interval struct {
	Start string
	End   string
}

// ValidTime reports whether s is a zero-padded HH:MM time.  Padding is
// required: "8:00" would break string ordering against "10:00".
func ValidTime(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// ValidDate reports whether s is a zero-padded YYYY-MM-DD date.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseInterval validates the two times and their ordering and returns the
// interval.  A zero-length window is rejected.
func ParseInterval(start, end string) (Interval, error) {
	if !ValidTime(start) || !ValidTime(end) {
		return Interval{}, ErrBadTime
	}
	if start >= end {
		return Interval{}, ErrBadOrder
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the candidate window conflicts with an existing
// one.  Three cases are checked explicitly: the candidate starts inside the
// existing interval, ends inside it, or fully contains it.  Because the
// intervals are half-open, a candidate that starts exactly at the existing
// end (or ends exactly at its start) does not overlap.
func Overlaps(existing, candidate Interval) bool {
	// candidate starts during existing
	if existing.Start <= candidate.Start && existing.End > candidate.Start {
		return true
	}
	// candidate ends during existing
	if existing.Start < candidate.End && existing.End >= candidate.End {
		return true
	}
	// candidate contains existing
	if existing.Start >= candidate.Start && existing.End <= candidate.End {
		return true
	}
	return false
}
