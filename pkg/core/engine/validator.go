package engine

import (
	"fmt"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// ScheduleViolation describes a placement that breaks a schedule invariant
type ScheduleViolation struct {
	Date     string
	ShiftID  string
	WorkerID string
	Rule     string
	Detail   string
}

// ValidateRun replays a run against the input and checks that:
//   - no worker holds two placements on the same date
//   - every locked assignment is present exactly once
//   - every non-forced generated placement satisfies the constraints at the moment it was made
//   - every forced placement is annotated in the conflict report
//
// An empty result means the run is valid.
func ValidateRun(in *Input, run *Run) []ScheduleViolation {
	var violations []ScheduleViolation

	states := make([]WorkerState, len(in.initial))
	copy(states, in.initial)

	byDate := make(map[string][]Placement)
	for _, p := range run.Placements {
		key := model.FormatDate(p.Date)
		byDate[key] = append(byDate[key], p)
	}

	forcedAnnotations := make(map[string]int)
	for _, c := range run.Conflicts {
		if c.Forced() {
			forcedAnnotations[placementKey(model.FormatDate(c.Date), c.ShiftID, c.WorkerID)]++
		}
	}

	lockedSeen := make(map[string]int)

	for _, date := range in.Window.Dates() {
		key := model.FormatDate(date)
		worked := make(map[string]bool)

		for _, p := range byDate[key] {
			if worked[p.WorkerID] {
				violations = append(violations, ScheduleViolation{
					Date:     key,
					ShiftID:  p.ShiftID,
					WorkerID: p.WorkerID,
					Rule:     "DoubleBooking",
					Detail:   "worker already placed on this date",
				})
				continue
			}
			worked[p.WorkerID] = true

			i, known := in.workerIndex[p.WorkerID]
			shift := in.Shift(p.ShiftID)

			switch {
			case p.Locked:
				lockedSeen[placementKey(key, p.ShiftID, p.WorkerID)]++
			case p.Forced:
				if forcedAnnotations[placementKey(key, p.ShiftID, p.WorkerID)] == 0 {
					violations = append(violations, ScheduleViolation{
						Date:     key,
						ShiftID:  p.ShiftID,
						WorkerID: p.WorkerID,
						Rule:     "ForcedNotReported",
						Detail:   "forced placement missing from conflict report",
					})
				}
			case known:
				c := &Candidate{
					Worker:   in.Workers[i],
					Shift:    shift,
					Date:     date,
					State:    states[i],
					Settings: in.settings[i],
					Request:  in.RequestFor(p.WorkerID, date),
				}
				for _, constraint := range in.constraints {
					if ok, reason := constraint.Check(c); !ok {
						violations = append(violations, ScheduleViolation{
							Date:     key,
							ShiftID:  p.ShiftID,
							WorkerID: p.WorkerID,
							Rule:     constraint.Name(),
							Detail:   reason,
						})
						break
					}
				}
			default:
				violations = append(violations, ScheduleViolation{
					Date:     key,
					ShiftID:  p.ShiftID,
					WorkerID: p.WorkerID,
					Rule:     "UnknownWorker",
					Detail:   "generated placement for a worker outside the site",
				})
			}

			if known {
				states[i].RecordWorked(shift, date)
			}
		}

		for i, worker := range in.Workers {
			if !worked[worker.ID] {
				states[i].RecordRest()
			}
		}
	}

	for _, a := range in.Locked {
		key := placementKey(model.FormatDate(a.Date), a.ShiftID, a.WorkerID)
		if lockedSeen[key] == 0 {
			violations = append(violations, ScheduleViolation{
				Date:     model.FormatDate(a.Date),
				ShiftID:  a.ShiftID,
				WorkerID: a.WorkerID,
				Rule:     "LockedMissing",
				Detail:   "locked assignment not present in run",
			})
			continue
		}
		lockedSeen[key]--
	}

	return violations
}

func placementKey(date, shiftID, workerID string) string {
	return fmt.Sprintf("%s|%s|%s", date, shiftID, workerID)
}
