package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// WeekdayMask is a bit set of weekdays, bit n set for time.Weekday(n)
type WeekdayMask uint8

// AllWeekdays has every day of the week set
const AllWeekdays WeekdayMask = 0x7F

// NewWeekdayMask builds a mask from the given days
func NewWeekdayMask(days ...time.Weekday) WeekdayMask {
	var m WeekdayMask
	for _, d := range days {
		m |= 1 << uint(d)
	}
	return m
}

func (m WeekdayMask) Has(day time.Weekday) bool {
	return m&(1<<uint(day)) != 0
}

// Weekdays returns the days in the mask, Sunday first
func (m WeekdayMask) Weekdays() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if m.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the mask as a comma separated list of weekday numbers (0 = Sunday)
func (m WeekdayMask) String() string {
	days := m.Weekdays()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

// ParseWeekdayList parses a comma separated list of weekday numbers (0 = Sunday).
// An empty string yields every day.
func ParseWeekdayList(s string) (WeekdayMask, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AllWeekdays, nil
	}

	var m WeekdayMask
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return 0, fmt.Errorf("invalid weekday %q in %q", part, s)
		}
		m |= 1 << uint(n)
	}
	return m, nil
}

// rruleAnchor is a Monday used to expand one week of a recurrence rule
var rruleAnchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// WeekdayMaskFromRRule derives the active weekdays from a DAILY or WEEKLY recurrence rule,
// e.g. "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"
func WeekdayMaskFromRRule(rule string) (WeekdayMask, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return 0, fmt.Errorf("invalid rrule %q: %w", rule, err)
	}

	if opt.Freq != rrule.WEEKLY && opt.Freq != rrule.DAILY {
		return 0, fmt.Errorf("rrule %q must have FREQ=WEEKLY or FREQ=DAILY", rule)
	}

	// Expand exactly one week from a fixed anchor
	opt.Dtstart = rruleAnchor
	opt.Count = 0
	opt.Interval = 1
	opt.Until = rruleAnchor.AddDate(0, 0, 6)

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return 0, fmt.Errorf("failed to build rrule %q: %w", rule, err)
	}

	var m WeekdayMask
	for _, occurrence := range r.All() {
		m |= 1 << uint(occurrence.Weekday())
	}
	if m == 0 {
		return 0, fmt.Errorf("rrule %q does not match any weekday", rule)
	}
	return m, nil
}
