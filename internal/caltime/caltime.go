// Package caltime holds the naive date and time-of-day values used for
// appointments. Neither carries a timezone: appointment instants are built by
// placing the wall-clock fields in UTC, and "now" is stripped to its wall
// clock the same way before any comparison.
package caltime

import (
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	secLayout   = "15:04:05"
)

var (
	ErrBadDate  = errors.New("date must be YYYY-MM-DD")
	ErrBadClock = errors.New("time must be HH:MM or HH:MM:SS")
)

// Date is a calendar day with no time or zone.
type Date struct {
	t time.Time // always midnight UTC
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return Date{t: t}, nil
}

// DateOf returns the calendar day of t as read on t's own wall clock.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) String() string        { return d.t.Format(dateLayout) }
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) AddDays(n int) Date    { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Before(o Date) bool    { return d.t.Before(o.t) }
func (d Date) After(o Date) bool     { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool     { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// Time returns midnight UTC of d, for drivers that want a time.Time.
func (d Date) Time() time.Time { return d.t }

// StartOfWeek returns the Monday on or before d.
func (d Date) StartOfWeek() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// FirstOfMonth returns day 1 of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// LastOfMonth returns the final day of d's month.
func (d Date) LastOfMonth() Date {
	return NewDate(d.Year(), d.Month()+1, 1).AddDays(-1)
}

// Clock is a time of day with second precision.
type Clock struct {
	sec int // seconds since midnight
}

func NewClock(hour, min, sec int) Clock {
	return Clock{sec: hour*3600 + min*60 + sec}
}

// ParseClock accepts HH:MM and HH:MM:SS.
func ParseClock(s string) (Clock, error) {
	layout := clockLayout
	if len(s) == len(secLayout) {
		layout = secLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return NewClock(t.Hour(), t.Minute(), t.Second()), nil
}

// ClockOf returns the wall-clock time of day of t.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute(), t.Second())
}

func (c Clock) Hour() int   { return c.sec / 3600 }
func (c Clock) Minute() int { return c.sec % 3600 / 60 }
func (c Clock) Second() int { return c.sec % 60 }

// Seconds since midnight.
func (c Clock) Seconds() int { return c.sec }

// Add returns c shifted by d, wrapping is not handled.
func (c Clock) Add(d time.Duration) Clock {
	return Clock{sec: c.sec + int(d/time.Second)}
}

func (c Clock) Compare(o Clock) int {
	switch {
	case c.sec < o.sec:
		return -1
	case c.sec > o.sec:
		return 1
	}
	return 0
}

// String renders HH:MM, or HH:MM:SS when seconds are set.
func (c Clock) String() string {
	if c.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
	}
	return c.HHMM()
}

func (c Clock) HHMM() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Combine places d and c in UTC to form the naive appointment instant.
func Combine(d Date, c Clock) time.Time {
	return d.t.Add(time.Duration(c.sec) * time.Second)
}

// Naive re-reads t's wall clock as if it were UTC, so it compares directly
// with instants built by Combine.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
