package engine

import (
	"sort"
	"time"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// RestedDaysOff is the days-off value given to a worker with no lookback history
const RestedDaysOff = 99

// WorkerState is the rolling status of a worker within a single run
type WorkerState struct {
	// Consecutive is the number of consecutive days worked up to and including the last worked day
	Consecutive int
	// DaysOff is the number of days since the last worked day
	DaysOff int

	LastShift *model.Shift
	LastDate  time.Time

	// TotalAssigned counts shifts worked in this run
	TotalAssigned int

	// BlockShiftID and BlockLength track the current run of days on the same shift
	BlockShiftID string
	BlockLength  int

	// Hits counts forced placements of this worker in this run
	Hits int
}

// RecordWorked updates the state for a day on which the worker took shift
func (s *WorkerState) RecordWorked(shift model.Shift, date time.Time) {
	s.TotalAssigned++
	if s.DaysOff == 0 {
		s.Consecutive++
	} else {
		s.Consecutive = 1
	}
	s.DaysOff = 0

	if s.BlockShiftID == shift.ID {
		s.BlockLength++
	} else {
		s.BlockShiftID = shift.ID
		s.BlockLength = 1
	}

	last := shift
	s.LastShift = &last
	s.LastDate = date
}

// RecordRest updates the state for a day on which the worker was not assigned
func (s *WorkerState) RecordRest() {
	s.Consecutive = 0
	s.DaysOff++
	s.BlockShiftID = ""
	s.BlockLength = 0
}

// GapDays returns the fractional number of days between the last worked date and date.
// It returns false if the worker has not worked.
func (s WorkerState) GapDays(date time.Time) (float64, bool) {
	if s.LastShift == nil {
		return 0, false
	}
	return date.Sub(s.LastDate).Hours() / 24, true
}

// lastWasNight returns true if the worker's last worked shift was a night shift
func (s WorkerState) lastWasNight() bool {
	return s.LastShift != nil && s.LastShift.IsNight()
}

// seedStates reconstructs each worker's state from the assignments preceding the window
func seedStates(in *Input, lookback []model.Assignment) []WorkerState {
	byWorker := make(map[string][]model.Assignment)
	for _, a := range lookback {
		if a.Date.Before(in.Window.Start) {
			byWorker[a.WorkerID] = append(byWorker[a.WorkerID], a)
		}
	}

	states := make([]WorkerState, len(in.Workers))
	for i, worker := range in.Workers {
		states[i] = stateFromHistory(in, byWorker[worker.ID])
	}
	return states
}

func stateFromHistory(in *Input, history []model.Assignment) WorkerState {
	if len(history) == 0 {
		return WorkerState{DaysOff: RestedDaysOff}
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})

	last := history[len(history)-1]
	lastShift := in.Shift(last.ShiftID)
	state := WorkerState{
		LastShift: &lastShift,
		LastDate:  model.DateOnly(last.Date),
	}

	gap := model.DaysBetween(last.Date, in.Window.Start)
	if gap <= 1 {
		// Worked the day before the window, count the streak backwards
		state.Consecutive = 1
		for i := len(history) - 2; i >= 0; i-- {
			diff := model.DaysBetween(history[i].Date, history[i+1].Date)
			if diff == 0 {
				continue
			}
			if diff != 1 {
				break
			}
			state.Consecutive++
		}
	} else {
		state.DaysOff = gap - 1
	}

	state.BlockShiftID = last.ShiftID
	state.BlockLength = state.Consecutive

	return state
}
