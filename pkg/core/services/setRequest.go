package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// SetRequestStore defines the database operations needed for recording a request
type SetRequestStore interface {
	GetSite(ctx context.Context, siteID string) (*model.Site, error)
	ListSiteWorkers(ctx context.Context, siteID string) ([]model.Worker, error)
	SetRequest(ctx context.Context, request model.Request) error
}

// SetRequest records that a worker wants to work, or wants to be off, on a date.
// A worker has at most one request per site and date; a new request replaces the old one.
func SetRequest(ctx context.Context, database SetRequestStore, logger *zap.Logger, request model.Request) error {
	if strings.TrimSpace(request.SiteID) == "" {
		return invalid("siteId", "is required")
	}
	if strings.TrimSpace(request.WorkerID) == "" {
		return invalid("userId", "is required")
	}
	if request.Date.IsZero() {
		return invalid("date", "is required")
	}
	if !request.Type.IsValid() {
		return invalid("type", "must be %q or %q, got %q", model.RequestWork, model.RequestOff, request.Type)
	}
	request.Date = model.DateOnly(request.Date)

	if _, err := database.GetSite(ctx, request.SiteID); err != nil {
		return siteNotFound(request.SiteID, err)
	}

	workers, err := database.ListSiteWorkers(ctx, request.SiteID)
	if err != nil {
		return fmt.Errorf("failed to fetch workers: %w", err)
	}
	if !slices.ContainsFunc(workers, func(w model.Worker) bool { return w.ID == request.WorkerID }) {
		return invalid("userId", "worker %s does not work at site %s", request.WorkerID, request.SiteID)
	}

	if err := database.SetRequest(ctx, request); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}

	logger.Info("Request saved",
		zap.String("site_id", request.SiteID),
		zap.String("worker_id", request.WorkerID),
		zap.String("date", model.FormatDate(request.Date)),
		zap.String("type", string(request.Type)))

	return nil
}
