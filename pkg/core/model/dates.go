package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates
const DateLayout = "2006-01-02"

// TimeOfDay is a wall clock time expressed in minutes since midnight
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (seconds are accepted and ignored)
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in time of day %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in time of day %q", s)
	}

	return TimeOfDay(hour*60 + minute), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals; it panics on invalid input
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// DateOnly truncates t to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange is an inclusive window of whole days
type DateRange struct {
	Start time.Time
	Days  int
}

// NewDateRange creates a range of days starting at start
func NewDateRange(start time.Time, days int) DateRange {
	return DateRange{Start: DateOnly(start), Days: days}
}

// NewDateRangeBetween creates a range covering start through end inclusive
func NewDateRangeBetween(start, end time.Time) DateRange {
	start, end = DateOnly(start), DateOnly(end)
	return DateRange{Start: start, Days: DaysBetween(start, end) + 1}
}

// End returns the last day in the range
func (r DateRange) End() time.Time {
	return r.Start.AddDate(0, 0, r.Days-1)
}

// Dates returns every day in the range in order
func (r DateRange) Dates() []time.Time {
	dates := make([]time.Time, 0, max(r.Days, 0))
	for i := 0; i < r.Days; i++ {
		dates = append(dates, r.Start.AddDate(0, 0, i))
	}
	return dates
}

// Contains returns true if the calendar date of d is inside the range
func (r DateRange) Contains(d time.Time) bool {
	d = DateOnly(d)
	return !d.Before(r.Start) && !d.After(r.End())
}

// Lookback returns the range of n days immediately preceding r
func (r DateRange) Lookback(n int) DateRange {
	return DateRange{Start: r.Start.AddDate(0, 0, -n), Days: n}
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", FormatDate(r.Start), FormatDate(r.End()))
}

// DaysBetween returns the whole number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
