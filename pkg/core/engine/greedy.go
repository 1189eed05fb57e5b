package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// NoAvailableWorkersReason is reported for a slot when every worker is already busy that day
const NoAvailableWorkersReason = "No available workers (all working)"

// runner holds the mutable state of a single greedy pass
type runner struct {
	in     *Input
	force  bool
	rng    *rand.Rand
	states []WorkerState
	run    *Run
}

// RunOnce performs one greedy pass over the whole window.
// The worker order each day is shuffled using rng, which is the only source of randomness.
// In force mode every slot that has any free worker is filled, sacrificing the most
// expendable worker when no valid candidate exists.
func RunOnce(in *Input, force bool, rng *rand.Rand) *Run {
	r := &runner{
		in:     in,
		force:  force,
		rng:    rng,
		states: make([]WorkerState, len(in.initial)),
		run:    &Run{},
	}
	// State is rebuilt from the seeded snapshot for every run
	copy(r.states, in.initial)

	for _, date := range in.Window.Dates() {
		r.fillDay(date)
	}

	return r.run
}

func (r *runner) fillDay(date time.Time) {
	busy := make(map[string]bool, len(r.in.Workers))
	lockedPerShift := make(map[string]int)

	// Locked assignments are applied first so that scoring reflects them
	for _, a := range r.in.lockedByDate[model.FormatDate(date)] {
		lockedPerShift[a.ShiftID]++
		r.run.Placements = append(r.run.Placements, Placement{
			Date:     date,
			ShiftID:  a.ShiftID,
			WorkerID: a.WorkerID,
			Locked:   true,
		})
		if busy[a.WorkerID] {
			continue
		}
		busy[a.WorkerID] = true
		if i, ok := r.in.workerIndex[a.WorkerID]; ok {
			r.states[i].RecordWorked(r.in.Shift(a.ShiftID), date)
		}
	}

	slots := make([]model.Shift, 0)
	for _, shift := range r.in.Shifts {
		if !shift.ActiveOn(date.Weekday()) {
			continue
		}
		needed := shift.RequiredStaff - lockedPerShift[shift.ID]
		for k := 0; k < needed; k++ {
			slots = append(slots, shift)
		}
	}

	order := r.rng.Perm(len(r.in.Workers))

	for _, shift := range slots {
		r.fillSlot(date, shift, order, busy)
	}

	for i, worker := range r.in.Workers {
		if !busy[worker.ID] {
			r.states[i].RecordRest()
		}
	}
}

func (r *runner) candidate(i int, shift model.Shift, date time.Time) *Candidate {
	worker := r.in.Workers[i]
	return &Candidate{
		Worker:   worker,
		Shift:    shift,
		Date:     date,
		State:    r.states[i],
		Settings: r.in.settings[i],
		Request:  r.in.RequestFor(worker.ID, date),
	}
}

func (r *runner) fillSlot(date time.Time, shift model.Shift, order []int, busy map[string]bool) {
	best := -1
	bestScore := 0

	for _, i := range order {
		if busy[r.in.Workers[i].ID] {
			continue
		}
		c := r.candidate(i, shift, date)
		if ok, _ := Evaluate(r.in.constraints, c); !ok {
			continue
		}
		score := r.in.scorer.Score(c)
		// Strictly greater keeps the earliest worker in shuffled order on ties
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best >= 0 {
		r.place(best, date, shift, bestScore, false, "")
		busy[r.in.Workers[best].ID] = true
		return
	}

	if r.force {
		r.forceSlot(date, shift, busy)
		return
	}

	entry := model.ConflictEntry{
		Date:      date,
		ShiftID:   shift.ID,
		ShiftName: shift.Name,
	}
	for i, worker := range r.in.Workers {
		if busy[worker.ID] {
			continue
		}
		_, reason := Evaluate(r.in.constraints, r.candidate(i, shift, date))
		entry.Failures = append(entry.Failures, model.ConflictFailure{
			WorkerID:   worker.ID,
			WorkerName: worker.Name,
			Reason:     reason,
		})
	}
	if len(entry.Failures) == 0 {
		entry.Reason = NoAvailableWorkersReason
	}
	r.run.Conflicts = append(r.run.Conflicts, entry)
	r.run.Score += r.in.Weights.UnfilledSlot
}

// forceSlot places the most expendable free worker on the slot regardless of constraints.
// Workers are ranked by category priority descending, then by hits this run ascending.
func (r *runner) forceSlot(date time.Time, shift model.Shift, busy map[string]bool) {
	victims := make([]int, 0, len(r.in.Workers))
	for i, worker := range r.in.Workers {
		if !busy[worker.ID] {
			victims = append(victims, i)
		}
	}

	if len(victims) == 0 {
		r.run.Conflicts = append(r.run.Conflicts, model.ConflictEntry{
			Date:      date,
			ShiftID:   shift.ID,
			ShiftName: shift.Name,
			Reason:    NoAvailableWorkersReason,
		})
		r.run.Score += r.in.Weights.UnfilledSlot
		return
	}

	sort.SliceStable(victims, func(a, b int) bool {
		wa, wb := r.in.Workers[victims[a]], r.in.Workers[victims[b]]
		if wa.CategoryPriority != wb.CategoryPriority {
			return wa.CategoryPriority > wb.CategoryPriority
		}
		return r.states[victims[a]].Hits < r.states[victims[b]].Hits
	})

	victim := victims[0]
	worker := r.in.Workers[victim]
	_, reason := Evaluate(r.in.constraints, r.candidate(victim, shift, date))

	r.states[victim].Hits++
	r.run.Hits++
	r.place(victim, date, shift, r.in.Weights.ForcedAssignment, true, reason)
	busy[worker.ID] = true

	r.run.Conflicts = append(r.run.Conflicts, model.ConflictEntry{
		Date:       date,
		ShiftID:    shift.ID,
		ShiftName:  shift.Name,
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
		Reason:     fmt.Sprintf("Forced: %s", reason),
	})
}

func (r *runner) place(i int, date time.Time, shift model.Shift, score int, forced bool, reason string) {
	r.run.Placements = append(r.run.Placements, Placement{
		Date:     date,
		ShiftID:  shift.ID,
		WorkerID: r.in.Workers[i].ID,
		Forced:   forced,
		Reason:   reason,
		Score:    score,
	})
	r.run.Score += score
	r.states[i].RecordWorked(shift, date)
}
