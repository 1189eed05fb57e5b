package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

// ViewScheduleStore defines the database operations needed for reading a schedule
type ViewScheduleStore interface {
	GetSite(ctx context.Context, siteID string) (*model.Site, error)
	ListActiveShifts(ctx context.Context, siteID string) ([]model.Shift, error)
	ListRequests(ctx context.Context, siteID string, window model.DateRange) ([]model.Request, error)
	ListSchedule(ctx context.Context, siteID string, window model.DateRange, status model.AssignmentStatus) ([]db.ScheduleEntry, error)
}

// ScheduleView is the stored schedule for a window with the requests that shaped it
type ScheduleView struct {
	Site     model.Site
	Window   model.DateRange
	Shifts   []model.Shift
	Entries  []db.ScheduleEntry
	Requests []model.Request
}

// ViewSchedule reads the schedule for a window. An empty status matches draft and published.
func ViewSchedule(
	ctx context.Context,
	database ViewScheduleStore,
	logger *zap.Logger,
	siteID string,
	window model.DateRange,
	status model.AssignmentStatus,
) (*ScheduleView, error) {
	if err := validateWindow(siteID, window); err != nil {
		return nil, err
	}
	if status != "" && status != model.StatusDraft && status != model.StatusPublished {
		return nil, invalid("status", "must be %q or %q, got %q", model.StatusDraft, model.StatusPublished, status)
	}

	logger.Debug("Viewing schedule",
		zap.String("site_id", siteID),
		zap.String("window", window.String()),
		zap.String("status", string(status)))

	site, err := database.GetSite(ctx, siteID)
	if err != nil {
		return nil, siteNotFound(siteID, err)
	}

	shifts, err := database.ListActiveShifts(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	entries, err := database.ListSchedule(ctx, siteID, window, status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	logger.Debug("Found schedule entries", zap.Int("count", len(entries)))

	requests, err := database.ListRequests(ctx, siteID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}
	logger.Debug("Found requests", zap.Int("count", len(requests)))

	return &ScheduleView{
		Site:     *site,
		Window:   window,
		Shifts:   shifts,
		Entries:  entries,
		Requests: requests,
	}, nil
}
