package db

import (
	"context"
	"errors"
	"time"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAssignment is returned when a commit would place a worker on the same shift twice on one date
	ErrDuplicateAssignment = errors.New("duplicate assignment")
)

// GenerationStore defines the database operations needed for generating a schedule
type GenerationStore interface {
	ListActiveShifts(ctx context.Context, siteID string) ([]model.Shift, error)
	ListSiteWorkers(ctx context.Context, siteID string) ([]model.Worker, error)
	GetWorkerSettings(ctx context.Context, workerID string) (*model.SettingsOverride, error)
	GetGlobalDefaults(ctx context.Context) (*model.SettingsOverride, error)
	ListRequests(ctx context.Context, siteID string, window model.DateRange) ([]model.Request, error)
	ListAssignments(ctx context.Context, siteID string, window model.DateRange, filter AssignmentFilter) ([]model.Assignment, error)
	CommitAssignments(ctx context.Context, siteID string, window model.DateRange, assignments []model.Assignment) error
}

// Database defines the interface for all database operations.
// Both the in-memory MemoryDB and postgres.DB implement this interface.
type Database interface {
	GenerationStore

	GetSite(ctx context.Context, siteID string) (*model.Site, error)
	UpsertSite(ctx context.Context, site model.Site) error
	UpsertCategory(ctx context.Context, category Category) error
	UpsertShift(ctx context.Context, shift model.Shift, position int) error
	UpsertWorker(ctx context.Context, worker model.Worker) error
	AddWorkerToSite(ctx context.Context, siteID, workerID, categoryID string) error

	SetWorkerSettings(ctx context.Context, workerID string, settings model.SettingsOverride) error
	SetGlobalDefaults(ctx context.Context, settings model.SettingsOverride) error

	SetRequest(ctx context.Context, request model.Request) error
	ReplaceWorkerDay(ctx context.Context, siteID, workerID string, date time.Time, assignment *model.Assignment, request *model.Request) error
	PublishAssignments(ctx context.Context, siteID string, window model.DateRange) (int, error)
	ListSchedule(ctx context.Context, siteID string, window model.DateRange, status model.AssignmentStatus) ([]ScheduleEntry, error)

	Close()
}
