package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// ShiftOff is the shift value that marks a worker as off for the day
const ShiftOff = "OFF"

// ManualAssignmentStore defines the database operations needed for pinning a worker's day
type ManualAssignmentStore interface {
	GetSite(ctx context.Context, siteID string) (*model.Site, error)
	ListActiveShifts(ctx context.Context, siteID string) ([]model.Shift, error)
	ListSiteWorkers(ctx context.Context, siteID string) ([]model.Worker, error)
	ReplaceWorkerDay(ctx context.Context, siteID, workerID string, date time.Time, assignment *model.Assignment, request *model.Request) error
}

// ManualAssignmentResult describes what now occupies the worker's day
type ManualAssignmentResult struct {
	Assignment *model.Assignment
	Request    *model.Request
}

// SetManualAssignment replaces whatever the worker had on date. shiftID "OFF" records an off
// request, any other shift ID records a locked assignment that generation will keep, and an
// empty shiftID clears the day.
func SetManualAssignment(
	ctx context.Context,
	database ManualAssignmentStore,
	logger *zap.Logger,
	siteID string,
	workerID string,
	date time.Time,
	shiftID string,
) (*ManualAssignmentResult, error) {
	if strings.TrimSpace(siteID) == "" {
		return nil, invalid("siteId", "is required")
	}
	if strings.TrimSpace(workerID) == "" {
		return nil, invalid("userId", "is required")
	}
	if date.IsZero() {
		return nil, invalid("date", "is required")
	}
	date = model.DateOnly(date)

	logger.Debug("Setting manual assignment",
		zap.String("site_id", siteID),
		zap.String("worker_id", workerID),
		zap.String("date", model.FormatDate(date)),
		zap.String("shift_id", shiftID))

	if _, err := database.GetSite(ctx, siteID); err != nil {
		return nil, siteNotFound(siteID, err)
	}

	workers, err := database.ListSiteWorkers(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	if !slices.ContainsFunc(workers, func(w model.Worker) bool { return w.ID == workerID }) {
		return nil, invalid("userId", "worker %s does not work at site %s", workerID, siteID)
	}

	result := &ManualAssignmentResult{}
	switch {
	case shiftID == "":
	case strings.EqualFold(shiftID, ShiftOff):
		result.Request = &model.Request{SiteID: siteID, WorkerID: workerID, Date: date, Type: model.RequestOff}
	default:
		shifts, err := database.ListActiveShifts(ctx, siteID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch shifts: %w", err)
		}
		idx := slices.IndexFunc(shifts, func(s model.Shift) bool { return s.ID == shiftID })
		if idx < 0 {
			return nil, invalid("shiftId", "shift %s does not exist at site %s", shiftID, siteID)
		}
		if !shifts[idx].ActiveOn(date.Weekday()) {
			return nil, invalid("shiftId", "shift %s does not run on %s", shiftID, date.Weekday())
		}
		result.Assignment = &model.Assignment{
			ID:       uuid.New().String(),
			SiteID:   siteID,
			Date:     date,
			ShiftID:  shiftID,
			WorkerID: workerID,
			Locked:   true,
			Status:   model.StatusDraft,
		}
	}

	if err := database.ReplaceWorkerDay(ctx, siteID, workerID, date, result.Assignment, result.Request); err != nil {
		return nil, fmt.Errorf("failed to save manual assignment: %w", err)
	}

	logger.Info("Manual assignment saved",
		zap.String("worker_id", workerID),
		zap.String("date", model.FormatDate(date)),
		zap.Bool("locked", result.Assignment != nil),
		zap.Bool("off", result.Request != nil))

	return result, nil
}
