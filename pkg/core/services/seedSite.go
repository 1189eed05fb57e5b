package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

// SeedSiteStore defines the database operations needed for loading a site definition
type SeedSiteStore interface {
	UpsertSite(ctx context.Context, site model.Site) error
	UpsertCategory(ctx context.Context, category db.Category) error
	UpsertShift(ctx context.Context, shift model.Shift, position int) error
	UpsertWorker(ctx context.Context, worker model.Worker) error
	AddWorkerToSite(ctx context.Context, siteID, workerID, categoryID string) error
	SetWorkerSettings(ctx context.Context, workerID string, settings model.SettingsOverride) error
	SetGlobalDefaults(ctx context.Context, settings model.SettingsOverride) error
	SetRequest(ctx context.Context, request model.Request) error
	ReplaceWorkerDay(ctx context.Context, siteID, workerID string, date time.Time, assignment *model.Assignment, request *model.Request) error
}

// SeedSiteResult counts the records written
type SeedSiteResult struct {
	SiteID     string
	Categories int
	Shifts     int
	Workers    int
	Requests   int
	Locked     int
}

// SeedSite writes a validated site definition to the store. Records are upserted, so seeding
// the same file twice leaves the store unchanged.
func SeedSite(ctx context.Context, database SeedSiteStore, logger *zap.Logger, seed *config.Seed) (*SeedSiteResult, error) {
	if err := config.ValidateSeed(seed); err != nil {
		return nil, &ValidationError{Field: "seed", Message: err.Error()}
	}

	siteID := seed.Site.ID
	logger.Debug("Seeding site", zap.String("site_id", siteID))

	if err := database.UpsertSite(ctx, model.Site{ID: siteID, Name: seed.Site.Name, Description: seed.Site.Description}); err != nil {
		return nil, fmt.Errorf("failed to save site: %w", err)
	}

	if seed.Defaults != nil {
		if err := database.SetGlobalDefaults(ctx, seed.Defaults.Override()); err != nil {
			return nil, fmt.Errorf("failed to save global settings: %w", err)
		}
	}

	for _, c := range seed.Categories {
		if err := database.UpsertCategory(ctx, db.Category{ID: c.ID, Name: c.Name, Priority: c.Priority}); err != nil {
			return nil, fmt.Errorf("failed to save category %s: %w", c.ID, err)
		}
	}
	logger.Debug("Saved categories", zap.Int("count", len(seed.Categories)))

	for i, s := range seed.Shifts {
		shift, err := s.Shift(siteID)
		if err != nil {
			return nil, fmt.Errorf("failed to convert shift: %w", err)
		}
		if err := database.UpsertShift(ctx, shift, i+1); err != nil {
			return nil, fmt.Errorf("failed to save shift %s: %w", s.ID, err)
		}
	}
	logger.Debug("Saved shifts", zap.Int("count", len(seed.Shifts)))

	for _, w := range seed.Workers {
		if err := database.UpsertWorker(ctx, model.Worker{ID: w.ID, Name: w.Name}); err != nil {
			return nil, fmt.Errorf("failed to save worker %s: %w", w.ID, err)
		}
		if err := database.AddWorkerToSite(ctx, siteID, w.ID, w.Category); err != nil {
			return nil, fmt.Errorf("failed to add worker %s to site: %w", w.ID, err)
		}
		if w.Settings != nil {
			if err := database.SetWorkerSettings(ctx, w.ID, w.Settings.Override()); err != nil {
				return nil, fmt.Errorf("failed to save settings for worker %s: %w", w.ID, err)
			}
		}
	}
	logger.Debug("Saved workers", zap.Int("count", len(seed.Workers)))

	for _, r := range seed.Requests {
		// Dates were checked by ValidateSeed
		date, _ := model.ParseDate(r.Date)
		request := model.Request{SiteID: siteID, WorkerID: r.Worker, Date: date, Type: model.RequestType(r.Type)}
		if err := database.SetRequest(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to save request for %s on %s: %w", r.Worker, r.Date, err)
		}
	}

	for _, l := range seed.Locked {
		date, _ := model.ParseDate(l.Date)
		assignment := &model.Assignment{
			ID:       uuid.New().String(),
			SiteID:   siteID,
			Date:     date,
			ShiftID:  l.Shift,
			WorkerID: l.Worker,
			Locked:   true,
			Status:   model.StatusDraft,
		}
		if err := database.ReplaceWorkerDay(ctx, siteID, l.Worker, date, assignment, nil); err != nil {
			return nil, fmt.Errorf("failed to save locked assignment for %s on %s: %w", l.Worker, l.Date, err)
		}
	}

	result := &SeedSiteResult{
		SiteID:     siteID,
		Categories: len(seed.Categories),
		Shifts:     len(seed.Shifts),
		Workers:    len(seed.Workers),
		Requests:   len(seed.Requests),
		Locked:     len(seed.Locked),
	}

	logger.Info("Site seeded",
		zap.String("site_id", siteID),
		zap.Int("shifts", result.Shifts),
		zap.Int("workers", result.Workers),
		zap.Int("requests", result.Requests),
		zap.Int("locked", result.Locked))

	return result, nil
}
