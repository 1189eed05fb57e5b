package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
	"github.com/jakechorley/shift-rota/pkg/lock"
	"github.com/jakechorley/shift-rota/pkg/metrics"
)

func intPtr(i int) *int { return &i }

func demoSeed() *config.Seed {
	return &config.Seed{
		Site:       config.SiteSeed{ID: "ward-7", Name: "Ward 7"},
		Categories: []config.CategorySeed{{ID: "agency", Name: "Agency", Priority: 50}, {ID: "staff", Name: "Staff", Priority: 5}},
		Shifts: []config.ShiftSeed{
			{ID: "day", Name: "Day", Start: "08:00", End: "16:00", RequiredStaff: 1},
			{ID: "night", Name: "Night", Start: "22:00", End: "06:00", RequiredStaff: 1, ActiveDays: "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"},
		},
		Workers: []config.WorkerSeed{
			{ID: "w1", Name: "Ada", Category: "staff", Settings: &config.SettingsSeed{MaxConsecutive: intPtr(4), BlockedDays: []int{0}}},
			{ID: "w2", Name: "Ben", Category: "agency"},
			{ID: "w3", Name: "Cy"},
		},
		Defaults: &config.SettingsSeed{MinDaysOff: intPtr(1)},
		Requests: []config.RequestSeed{{Worker: "w2", Date: "2025-03-11", Type: "off"}},
		Locked:   []config.LockedSeed{{Worker: "w3", Date: "2025-03-12", Shift: "night"}},
	}
}

func TestSeedSite(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryDB()

	result, err := SeedSite(ctx, store, zap.NewNop(), demoSeed())
	require.NoError(t, err)
	assert.Equal(t, &SeedSiteResult{SiteID: "ward-7", Categories: 2, Shifts: 2, Workers: 3, Requests: 1, Locked: 1}, result)

	// Seeding twice is idempotent
	_, err = SeedSite(ctx, store, zap.NewNop(), demoSeed())
	require.NoError(t, err)

	shifts, err := store.ListActiveShifts(ctx, "ward-7")
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, "day", shifts[0].ID)
	assert.False(t, shifts[1].ActiveOn(time.Saturday))
	assert.True(t, shifts[1].IsNight())

	workers, err := store.ListSiteWorkers(ctx, "ward-7")
	require.NoError(t, err)
	require.Len(t, workers, 3)
	assert.Equal(t, 5, workers[0].CategoryPriority)
	assert.Equal(t, 50, workers[1].CategoryPriority)
	assert.Equal(t, model.DefaultCategoryPriority, workers[2].CategoryPriority)

	settings, err := store.GetWorkerSettings(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, 4, *settings.MaxConsecutive)
	assert.True(t, settings.Availability.BlocksDay(time.Sunday))

	global, err := store.GetGlobalDefaults(ctx)
	require.NoError(t, err)
	require.NotNil(t, global)
	assert.Equal(t, 1, *global.MinDaysOff)

	window := model.NewDateRange(date("2025-03-10"), 7)
	requests, err := store.ListRequests(ctx, "ward-7", window)
	require.NoError(t, err)
	assert.Len(t, requests, 1)

	locked, err := store.ListAssignments(ctx, "ward-7", window, db.AssignmentFilter{LockedOnly: true})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, "w3", locked[0].WorkerID)

	// A seeded site can be generated end to end
	gen, err := GenerateSchedule(ctx, store, lock.NewLocalLocker(), metrics.NewNop(), testConfig(), zap.NewNop(), GenerateParams{
		SiteID:    "ward-7",
		StartDate: window.Start,
		Days:      window.Days,
		Force:     true,
		Seed:      1,
	})
	require.NoError(t, err)
	assert.True(t, gen.Success)
	assert.True(t, gen.Committed)
}

func TestSeedSite_Invalid(t *testing.T) {
	seed := demoSeed()
	seed.Locked[0].Shift = "evening"

	_, err := SeedSite(context.Background(), db.NewMemoryDB(), zap.NewNop(), seed)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
