package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShift_IsNight(t *testing.T) {
	tests := []struct {
		start    string
		end      string
		expected bool
	}{
		{"08:00", "16:00", false},
		{"22:00", "06:00", true},
		{"20:00", "04:00", true},
		{"18:00", "23:00", false},
		{"20:30", "23:30", true},
		{"00:00", "08:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.start+"-"+tt.end, func(t *testing.T) {
			shift := Shift{Start: MustParseTimeOfDay(tt.start), End: MustParseTimeOfDay(tt.end)}
			assert.Equal(t, tt.expected, shift.IsNight())
		})
	}
}

func TestShift_ActiveOn(t *testing.T) {
	everyDay := Shift{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.True(t, everyDay.ActiveOn(d))
	}

	weekdays := Shift{ActiveDays: NewWeekdayMask(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)}
	assert.True(t, weekdays.ActiveOn(time.Monday))
	assert.False(t, weekdays.ActiveOn(time.Saturday))
	assert.False(t, weekdays.ActiveOn(time.Sunday))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("22:15")
	require.NoError(t, err)
	assert.Equal(t, 22, tod.Hour())
	assert.Equal(t, 15, tod.Minute())
	assert.Equal(t, "22:15", tod.String())

	tod, err = ParseTimeOfDay("06:00:00")
	require.NoError(t, err)
	assert.Equal(t, "06:00", tod.String())

	for _, bad := range []string{"", "6", "24:00", "12:60", "ab:cd", "1:2:3:4"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateRange(t *testing.T) {
	start := time.Date(2025, 1, 30, 15, 0, 0, 0, time.UTC)
	r := NewDateRange(start, 3)

	assert.Equal(t, "2025-01-30", FormatDate(r.Start))
	assert.Equal(t, "2025-02-01", FormatDate(r.End()))
	assert.Len(t, r.Dates(), 3)
	assert.True(t, r.Contains(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-30..2025-02-01", r.String())

	lookback := r.Lookback(7)
	assert.Equal(t, "2025-01-23", FormatDate(lookback.Start))
	assert.Equal(t, "2025-01-29", FormatDate(lookback.End()))

	between := NewDateRangeBetween(r.Start, r.End())
	assert.Equal(t, r, between)
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("30/01/2025")
	assert.Error(t, err)
}
