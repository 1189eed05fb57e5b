package engine

import (
	"fmt"
	"time"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// NightToDayMinGapDays is the gap at or below which a night shift cannot be followed by a day shift.
// It sits slightly above one day so a next-day transition is always caught.
const NightToDayMinGapDays = 1.1

// Candidate is a worker being considered for a shift on a date
type Candidate struct {
	Worker   model.Worker
	Shift    model.Shift
	Date     time.Time
	State    WorkerState
	Settings model.WorkerSettings
	// Request is the worker's request for Date, or "" if none
	Request model.RequestType
}

// Constraint is a hard rule. If any constraint rejects a candidate the worker
// can only be placed on the shift by forcing.
type Constraint interface {
	// Name returns a human-readable identifier for this constraint
	Name() string

	// Check returns true if the candidate satisfies the constraint.
	// Otherwise it returns false and the reason reported to the caller.
	Check(c *Candidate) (bool, string)
}

// DefaultConstraints returns the built-in constraints in evaluation order
func DefaultConstraints() []Constraint {
	return []Constraint{
		RequestedOffConstraint{},
		AvailabilityConstraint{},
		MaxConsecutiveConstraint{},
		NightToDayRestConstraint{MinGapDays: NightToDayMinGapDays},
	}
}

// Evaluate runs the constraints in order and stops at the first failure
func Evaluate(constraints []Constraint, c *Candidate) (bool, string) {
	for _, constraint := range constraints {
		if ok, reason := constraint.Check(c); !ok {
			return false, reason
		}
	}
	return true, ""
}

// RequestedOffConstraint rejects workers who asked for the date off
type RequestedOffConstraint struct{}

func (RequestedOffConstraint) Name() string {
	return "RequestedOff"
}

func (RequestedOffConstraint) Check(c *Candidate) (bool, string) {
	if c.Request == model.RequestOff {
		return false, "Requested Off"
	}
	return true, ""
}

// AvailabilityConstraint rejects blocked weekdays and blocked shifts
type AvailabilityConstraint struct{}

func (AvailabilityConstraint) Name() string {
	return "Availability"
}

func (AvailabilityConstraint) Check(c *Candidate) (bool, string) {
	if c.Settings.Availability.BlocksDay(c.Date.Weekday()) {
		return false, "Availability (Day Blocked)"
	}
	if c.Settings.Availability.BlocksShift(c.Shift.ID) {
		return false, "Availability (Shift Blocked)"
	}
	return true, ""
}

// MaxConsecutiveConstraint rejects a day that would extend the streak past the worker's limit
type MaxConsecutiveConstraint struct{}

func (MaxConsecutiveConstraint) Name() string {
	return "MaxConsecutive"
}

func (MaxConsecutiveConstraint) Check(c *Candidate) (bool, string) {
	if c.State.Consecutive+1 > c.Settings.MaxConsecutive {
		return false, fmt.Sprintf("Max Consecutive Shifts (%d)", c.Settings.MaxConsecutive)
	}
	return true, ""
}

// NightToDayRestConstraint blocks a day shift too soon after a night shift.
// Day-to-day and night-to-night transitions are never blocked.
type NightToDayRestConstraint struct {
	MinGapDays float64
}

func (NightToDayRestConstraint) Name() string {
	return "NightToDayRest"
}

func (r NightToDayRestConstraint) Check(c *Candidate) (bool, string) {
	if !c.State.lastWasNight() || c.Shift.IsNight() {
		return true, ""
	}
	gap, _ := c.State.GapDays(c.Date)
	if nightToDayBlocked(gap, r.MinGapDays) {
		return false, "Inadequate Rest (Night → Day)"
	}
	return true, ""
}

func nightToDayBlocked(gapDays, minGapDays float64) bool {
	return gapDays <= minGapDays
}
