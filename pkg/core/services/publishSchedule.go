package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/export"
)

// PublishScheduleStore defines the database operations needed for publishing a schedule
type PublishScheduleStore interface {
	ViewScheduleStore
	PublishAssignments(ctx context.Context, siteID string, window model.DateRange) (int, error)
}

// SchedulePublisher writes a published schedule somewhere people can read it
type SchedulePublisher interface {
	PublishSchedule(ctx context.Context, spreadsheetID string, window model.DateRange, grid export.Grid) error
}

// PublishScheduleResult reports what was published
type PublishScheduleResult struct {
	Window    model.DateRange
	Published int
	// SheetWritten is true if the schedule was written to the configured spreadsheet
	SheetWritten bool
	Grid         export.Grid
}

// PublishSchedule marks every assignment in the window as published. When a spreadsheet is
// configured and publisher is non-nil the published schedule is also written to a tab.
func PublishSchedule(
	ctx context.Context,
	database PublishScheduleStore,
	publisher SchedulePublisher,
	cfg *config.Config,
	logger *zap.Logger,
	siteID string,
	window model.DateRange,
) (*PublishScheduleResult, error) {
	if err := validateWindow(siteID, window); err != nil {
		return nil, err
	}

	logger.Debug("Starting publishSchedule", zap.String("site_id", siteID), zap.String("window", window.String()))

	if _, err := database.GetSite(ctx, siteID); err != nil {
		return nil, siteNotFound(siteID, err)
	}

	count, err := database.PublishAssignments(ctx, siteID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to publish assignments: %w", err)
	}
	logger.Info("Published assignments", zap.Int("count", count))

	view, err := ViewSchedule(ctx, database, logger, siteID, window, model.StatusPublished)
	if err != nil {
		return nil, err
	}

	result := &PublishScheduleResult{
		Window:    window,
		Published: count,
		Grid:      export.BuildGrid(window, view.Shifts, view.Entries),
	}

	if cfg.Publish.SpreadsheetID == "" || publisher == nil {
		logger.Debug("No spreadsheet configured - skipping sheet publish")
		return result, nil
	}

	logger.Debug("Writing schedule to spreadsheet", zap.String("spreadsheet_id", cfg.Publish.SpreadsheetID))
	if err := publisher.PublishSchedule(ctx, cfg.Publish.SpreadsheetID, window, result.Grid); err != nil {
		return nil, fmt.Errorf("failed to write schedule to spreadsheet: %w", err)
	}
	result.SheetWritten = true

	return result, nil
}
