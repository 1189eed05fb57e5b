package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// InputConfig contains everything needed to build a search Input
type InputConfig struct {
	// Window is the range of days to generate
	Window model.DateRange

	// Shifts in declaration order. Slots are filled in this order each day.
	Shifts []model.Shift

	// Workers eligible at the site, with their category priority
	Workers []model.Worker

	// Settings are the resolved settings per worker ID. Workers without an entry use Defaults.
	Settings map[string]model.WorkerSettings

	// Defaults is used for any worker missing from Settings
	Defaults model.WorkerSettings

	// Requests inside the window
	Requests []model.Request

	// Locked assignments inside the window
	Locked []model.Assignment

	// Lookback assignments immediately preceding the window, used to seed worker state
	Lookback []model.Assignment

	// Weights is the score table. Nil means DefaultWeights().
	Weights *Weights

	// Constraints evaluated in order. Nil means DefaultConstraints().
	Constraints []Constraint
}

type requestKey struct {
	workerID string
	date     string
}

// Input is an immutable snapshot of the data a search run reads.
// It is safe to share between concurrently executing runs.
type Input struct {
	Window   model.DateRange
	Shifts   []model.Shift
	Workers  []model.Worker
	Requests []model.Request
	Locked   []model.Assignment
	Weights  Weights

	constraints  []Constraint
	scorer       Scorer
	settings     []model.WorkerSettings
	workerIndex  map[string]int
	shiftsByID   map[string]model.Shift
	requests     map[requestKey]model.RequestType
	lockedByDate map[string][]model.Assignment
	initial      []WorkerState
}

// NewInput validates the config and builds the lookup indexes used during search
func NewInput(cfg InputConfig) (*Input, error) {
	if cfg.Window.Days <= 0 {
		return nil, fmt.Errorf("window must contain at least one day, got %d", cfg.Window.Days)
	}

	in := &Input{
		Window:       cfg.Window,
		Shifts:       slices.Clone(cfg.Shifts),
		Workers:      slices.Clone(cfg.Workers),
		Requests:     slices.Clone(cfg.Requests),
		Weights:      DefaultWeights(),
		constraints:  cfg.Constraints,
		settings:     make([]model.WorkerSettings, len(cfg.Workers)),
		workerIndex:  make(map[string]int, len(cfg.Workers)),
		shiftsByID:   make(map[string]model.Shift, len(cfg.Shifts)),
		requests:     make(map[requestKey]model.RequestType, len(cfg.Requests)),
		lockedByDate: make(map[string][]model.Assignment),
	}
	if cfg.Weights != nil {
		in.Weights = *cfg.Weights
	}
	if in.constraints == nil {
		in.constraints = DefaultConstraints()
	}
	in.scorer = Scorer{Weights: in.Weights}

	for _, shift := range cfg.Shifts {
		if _, exists := in.shiftsByID[shift.ID]; exists {
			return nil, fmt.Errorf("duplicate shift ID %s", shift.ID)
		}
		if shift.RequiredStaff < 0 {
			return nil, fmt.Errorf("shift %s has negative required staff", shift.ID)
		}
		in.shiftsByID[shift.ID] = shift
	}

	for i, worker := range cfg.Workers {
		if _, exists := in.workerIndex[worker.ID]; exists {
			return nil, fmt.Errorf("duplicate worker ID %s", worker.ID)
		}
		in.workerIndex[worker.ID] = i

		settings, ok := cfg.Settings[worker.ID]
		if !ok {
			settings = cfg.Defaults
		}
		in.settings[i] = settings
	}

	for _, req := range cfg.Requests {
		if !in.Window.Contains(req.Date) {
			continue
		}
		in.requests[requestKey{workerID: req.WorkerID, date: model.FormatDate(req.Date)}] = req.Type
	}

	for _, a := range cfg.Locked {
		if !in.Window.Contains(a.Date) {
			return nil, fmt.Errorf("locked assignment %s on %s is outside window %s", a.ID, model.FormatDate(a.Date), in.Window)
		}
		a.Locked = true
		key := model.FormatDate(a.Date)
		in.Locked = append(in.Locked, a)
		in.lockedByDate[key] = append(in.lockedByDate[key], a)
	}

	in.initial = seedStates(in, cfg.Lookback)

	return in, nil
}

// Shift returns the shift with the given ID. Unknown IDs yield a placeholder with only the ID set.
func (in *Input) Shift(id string) model.Shift {
	if shift, ok := in.shiftsByID[id]; ok {
		return shift
	}
	return model.Shift{ID: id}
}

// Worker returns the worker with the given ID
func (in *Input) Worker(id string) (model.Worker, bool) {
	i, ok := in.workerIndex[id]
	if !ok {
		return model.Worker{}, false
	}
	return in.Workers[i], true
}

// SettingsFor returns the resolved settings for a worker
func (in *Input) SettingsFor(workerID string) model.WorkerSettings {
	if i, ok := in.workerIndex[workerID]; ok {
		return in.settings[i]
	}
	return model.DefaultWorkerSettings()
}

// RequestFor returns the request type for the worker on date, or "" if there is none
func (in *Input) RequestFor(workerID string, date time.Time) model.RequestType {
	return in.requests[requestKey{workerID: workerID, date: model.FormatDate(date)}]
}

// InitialState returns a copy of the seeded state for a worker
func (in *Input) InitialState(workerID string) (WorkerState, bool) {
	i, ok := in.workerIndex[workerID]
	if !ok {
		return WorkerState{}, false
	}
	return in.initial[i], true
}

// Placement is a single worker placed on a shift for a date during a run
type Placement struct {
	Date     time.Time
	ShiftID  string
	WorkerID string
	Locked   bool

	// Forced is true if the worker was placed despite failing a constraint
	Forced bool
	// Reason is the constraint the worker failed (forced placements only)
	Reason string

	// Score contributed by this placement (0 for locked placements)
	Score int
}

// Run is the outcome of one greedy pass over the window
type Run struct {
	Index      int
	Seed       int64
	Placements []Placement
	Conflicts  []model.ConflictEntry
	Score      int
	Hits       int
}

// Complete returns true if every slot was filled without violating a constraint
func (r *Run) Complete() bool {
	return len(r.Conflicts) == 0
}

// Generated returns the placements made by the run, excluding locked ones
func (r *Run) Generated() []Placement {
	generated := make([]Placement, 0, len(r.Placements))
	for _, p := range r.Placements {
		if !p.Locked {
			generated = append(generated, p)
		}
	}
	return generated
}

// UnfilledSlots counts conflict entries that left a slot empty
func (r *Run) UnfilledSlots() int {
	count := 0
	for _, c := range r.Conflicts {
		if !c.Forced() {
			count++
		}
	}
	return count
}
