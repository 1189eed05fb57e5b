package model

import (
	"slices"
	"time"
)

// Availability lists the days and shifts a worker can never be assigned to
type Availability struct {
	BlockedDays   WeekdayMask
	BlockedShifts []string
}

func (a Availability) BlocksDay(day time.Weekday) bool {
	return a.BlockedDays.Has(day)
}

func (a Availability) BlocksShift(shiftID string) bool {
	return slices.Contains(a.BlockedShifts, shiftID)
}

// WorkerSettings holds the rules and preferences used when scheduling a worker
type WorkerSettings struct {
	MaxConsecutive int `validate:"min=1"`
	MinDaysOff     int `validate:"min=0"`
	// NightPreference is informational only and is not scored
	NightPreference float64 `validate:"gte=0"`
	TargetShifts    int     `validate:"min=0"`
	TargetVariance  int     `validate:"min=0"`
	// PreferredBlockLength is how many consecutive days of the same shift the worker prefers
	PreferredBlockLength int `validate:"min=1"`
	// ShiftRanking lists shift names, most preferred first
	ShiftRanking []string `validate:"dive,required"`
	Availability Availability
}

// RankOf returns the index of the shift name in the ranking, or -1 if absent
func (s WorkerSettings) RankOf(shiftName string) int {
	return slices.Index(s.ShiftRanking, shiftName)
}

// DefaultWorkerSettings returns the built-in site-wide defaults
func DefaultWorkerSettings() WorkerSettings {
	return WorkerSettings{
		MaxConsecutive:       5,
		MinDaysOff:           2,
		NightPreference:      1.0,
		TargetShifts:         20,
		TargetVariance:       2,
		PreferredBlockLength: 3,
	}
}

// SettingsOverride holds the fields explicitly set for a worker; nil fields fall back
// to the site-wide defaults
type SettingsOverride struct {
	MaxConsecutive       *int
	MinDaysOff           *int
	NightPreference      *float64
	TargetShifts         *int
	TargetVariance       *int
	PreferredBlockLength *int
	ShiftRanking         []string
	Availability         Availability
}

// Apply resolves the override against defaults
func (o *SettingsOverride) Apply(defaults WorkerSettings) WorkerSettings {
	resolved := defaults
	resolved.ShiftRanking = slices.Clone(defaults.ShiftRanking)
	resolved.Availability.BlockedShifts = slices.Clone(defaults.Availability.BlockedShifts)
	if o == nil {
		return resolved
	}

	if o.MaxConsecutive != nil {
		resolved.MaxConsecutive = *o.MaxConsecutive
	}
	if o.MinDaysOff != nil {
		resolved.MinDaysOff = *o.MinDaysOff
	}
	if o.NightPreference != nil {
		resolved.NightPreference = *o.NightPreference
	}
	if o.TargetShifts != nil {
		resolved.TargetShifts = *o.TargetShifts
	}
	if o.TargetVariance != nil {
		resolved.TargetVariance = *o.TargetVariance
	}
	if o.PreferredBlockLength != nil {
		resolved.PreferredBlockLength = *o.PreferredBlockLength
	}

	// Ranking and availability are per worker, not inherited
	resolved.ShiftRanking = slices.Clone(o.ShiftRanking)
	resolved.Availability = Availability{
		BlockedDays:   o.Availability.BlockedDays,
		BlockedShifts: slices.Clone(o.Availability.BlockedShifts),
	}
	return resolved
}
