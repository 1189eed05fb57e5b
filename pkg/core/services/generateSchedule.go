package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/core/engine"
	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
	"github.com/jakechorley/shift-rota/pkg/lock"
	"github.com/jakechorley/shift-rota/pkg/metrics"
)

// GenerateScheduleStore defines the database operations needed for generating a schedule
type GenerateScheduleStore interface {
	db.GenerationStore
	GetSite(ctx context.Context, siteID string) (*model.Site, error)
}

// GenerateParams identifies the window to generate and how to generate it
type GenerateParams struct {
	SiteID    string
	StartDate time.Time
	Days      int

	// Force fills every slot, sacrificing constraints where necessary, and commits the result
	Force bool

	// DryRun runs the search without writing anything
	DryRun bool

	// Seed is the base random seed. Zero picks one from the clock.
	Seed int64
}

// Window returns the date range covered by the params
func (p GenerateParams) Window() model.DateRange {
	return model.NewDateRange(p.StartDate, p.Days)
}

// GenerateScheduleResult contains the winning run and what happened to it
type GenerateScheduleResult struct {
	RunID  string
	SiteID string
	Window model.DateRange
	Seed   int64

	// Assignments is the full schedule for the window, locked assignments included
	Assignments []model.Assignment
	Conflicts   []model.ConflictEntry

	// Success is true if the schedule is complete or was forced
	Success bool
	// Complete is true if no slot was left unfilled or forced
	Complete  bool
	Committed bool

	Score         int
	RunsEvaluated int
	UnfilledSlots int
	ForcedSlots   int
}

// GenerateSchedule builds a schedule for the window and commits it if it is complete or
// params.Force is set. Only one generation may run per site at a time: the site lock is
// held from the first read until after the commit.
func GenerateSchedule(
	ctx context.Context,
	database GenerateScheduleStore,
	locker lock.Locker,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
	params GenerateParams,
) (result *GenerateScheduleResult, err error) {
	window := params.Window()
	if err := validateWindow(params.SiteID, window); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID), zap.String("site_id", params.SiteID))
	logger.Debug("Starting generateSchedule",
		zap.String("start_date", model.FormatDate(window.Start)),
		zap.Int("days", window.Days),
		zap.Bool("force", params.Force),
		zap.Bool("dry_run", params.DryRun))

	started := time.Now()
	defer func() {
		outcome := metrics.OutcomeError
		switch {
		case err != nil:
		case params.DryRun:
			outcome = metrics.OutcomeDryRun
		case result.Committed:
			outcome = metrics.OutcomeCommitted
		default:
			outcome = metrics.OutcomeConflicts
		}
		recorder.ObserveGeneration(params.SiteID, outcome, time.Since(started).Seconds())
	}()

	if _, err := database.GetSite(ctx, params.SiteID); err != nil {
		return nil, siteNotFound(params.SiteID, err)
	}

	lease, err := locker.Acquire(ctx, lock.SiteKey(params.SiteID))
	if err != nil {
		return nil, fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	defer func() {
		if releaseErr := lease.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			logger.Warn("Failed to release generation lock", zap.Error(releaseErr))
		}
	}()

	// Fetching
	inputCfg, err := fetchGenerationInput(ctx, database, cfg, logger, params.SiteID, window)
	if err != nil {
		return nil, err
	}

	input, err := engine.NewInput(*inputCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build search input: %w", err)
	}

	// Searching
	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	iterations := cfg.Generation.Iterations
	if params.Force {
		iterations = cfg.Generation.ForcedIterations
	}

	logger.Debug("Searching",
		zap.Int("iterations", iterations),
		zap.Int("parallelism", cfg.Generation.Parallelism),
		zap.Int64("seed", seed))

	search, err := engine.Search(ctx, input, engine.SearchOptions{
		Iterations:  iterations,
		Parallelism: cfg.Generation.Parallelism,
		Seed:        seed,
		Force:       params.Force,
		TimeBudget:  cfg.Generation.TimeBudget,
	})
	if err != nil {
		if errors.Is(err, engine.ErrNoSchedule) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to search for a schedule: %w", err)
	}
	best := search.Best

	recorder.RecordRuns(params.SiteID, search.RunsEvaluated)
	recorder.RecordScore(params.SiteID, best.Score)
	recorder.RecordConflicts(params.SiteID, best.UnfilledSlots(), len(best.Conflicts)-best.UnfilledSlots())

	if violations := engine.ValidateRun(input, best); len(violations) > 0 {
		for _, v := range violations {
			logger.Warn("Winning run breaks a schedule rule",
				zap.String("date", v.Date),
				zap.String("shift_id", v.ShiftID),
				zap.String("worker_id", v.WorkerID),
				zap.String("rule", v.Rule),
				zap.String("detail", v.Detail))
		}
	}

	// Deciding
	result = &GenerateScheduleResult{
		RunID:         runID,
		SiteID:        params.SiteID,
		Window:        window,
		Seed:          seed,
		Assignments:   toAssignments(params.SiteID, best.Placements),
		Conflicts:     best.Conflicts,
		Complete:      best.Complete(),
		Score:         best.Score,
		RunsEvaluated: search.RunsEvaluated,
		UnfilledSlots: best.UnfilledSlots(),
		ForcedSlots:   len(best.Conflicts) - best.UnfilledSlots(),
	}
	result.Success = result.Complete || params.Force

	logger.Info("Search finished",
		zap.Int("runs", result.RunsEvaluated),
		zap.Int("score", result.Score),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Int("forced", result.ForcedSlots),
		zap.Bool("complete", result.Complete))

	shouldSave := !params.DryRun && result.Success

	// Committing
	if shouldSave {
		logger.Info("Saving schedule to database",
			zap.Bool("complete", result.Complete),
			zap.Bool("forced", params.Force && !result.Complete))

		generated := toAssignments(params.SiteID, best.Generated())
		if err := database.CommitAssignments(ctx, params.SiteID, window, generated); err != nil {
			recorder.IncrementCommit("failure")
			return nil, fmt.Errorf("failed to save schedule: %w", err)
		}
		recorder.IncrementCommit("success")
		result.Committed = true
	} else if params.DryRun {
		logger.Info("Dry run mode - schedule not saved")
	} else {
		logger.Warn("Schedule has conflicts - not saving to database (use force to save anyway)")
	}

	return result, nil
}

// fetchGenerationInput loads everything a search reads and resolves per-worker settings
func fetchGenerationInput(
	ctx context.Context,
	database db.GenerationStore,
	cfg *config.Config,
	logger *zap.Logger,
	siteID string,
	window model.DateRange,
) (*engine.InputConfig, error) {
	logger.Debug("Fetching shifts")
	shifts, err := database.ListActiveShifts(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	logger.Debug("Found shifts", zap.Int("count", len(shifts)))

	logger.Debug("Fetching workers")
	workers, err := database.ListSiteWorkers(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	logger.Debug("Found workers", zap.Int("count", len(workers)))

	logger.Debug("Fetching settings")
	global, err := database.GetGlobalDefaults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch global settings: %w", err)
	}
	defaults := global.Apply(cfg.Defaults.WorkerSettings())

	settings := make(map[string]model.WorkerSettings, len(workers))
	for _, w := range workers {
		override, err := database.GetWorkerSettings(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch settings for worker %s: %w", w.ID, err)
		}
		settings[w.ID] = override.Apply(defaults)
	}

	logger.Debug("Fetching requests")
	requests, err := database.ListRequests(ctx, siteID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}
	logger.Debug("Found requests", zap.Int("count", len(requests)))

	logger.Debug("Fetching locked assignments")
	locked, err := database.ListAssignments(ctx, siteID, window, db.AssignmentFilter{LockedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locked assignments: %w", err)
	}
	logger.Debug("Found locked assignments", zap.Int("count", len(locked)))

	lookbackWindow := window.Lookback(cfg.Generation.LookbackDays)
	logger.Debug("Fetching lookback assignments", zap.String("window", lookbackWindow.String()))
	lookback, err := database.ListAssignments(ctx, siteID, lookbackWindow, db.AssignmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lookback assignments: %w", err)
	}
	logger.Debug("Found lookback assignments", zap.Int("count", len(lookback)))

	weights := cfg.Generation.Weights
	return &engine.InputConfig{
		Window:   window,
		Shifts:   shifts,
		Workers:  workers,
		Settings: settings,
		Defaults: defaults,
		Requests: requests,
		Locked:   locked,
		Lookback: lookback,
		Weights:  &weights,
	}, nil
}

func toAssignments(siteID string, placements []engine.Placement) []model.Assignment {
	assignments := make([]model.Assignment, 0, len(placements))
	for _, p := range placements {
		assignments = append(assignments, model.Assignment{
			SiteID:   siteID,
			Date:     p.Date,
			ShiftID:  p.ShiftID,
			WorkerID: p.WorkerID,
			Locked:   p.Locked,
			Status:   model.StatusDraft,
		})
	}
	return assignments
}
