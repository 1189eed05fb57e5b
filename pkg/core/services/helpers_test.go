package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
	"github.com/jakechorley/shift-rota/pkg/export"
	"github.com/jakechorley/shift-rota/pkg/metrics"
)

const testSite = "site-1"

func date(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

var (
	dayShift = model.Shift{
		ID:            "day",
		SiteID:        testSite,
		Name:          "Day",
		Start:         model.MustParseTimeOfDay("08:00"),
		End:           model.MustParseTimeOfDay("16:00"),
		RequiredStaff: 1,
	}
	nightShift = model.Shift{
		ID:            "night",
		SiteID:        testSite,
		Name:          "Night",
		Start:         model.MustParseTimeOfDay("22:00"),
		End:           model.MustParseTimeOfDay("06:00"),
		RequiredStaff: 1,
	}
)

// newStore creates a MemoryDB holding testSite with the given shifts and workers
func newStore(t *testing.T, shifts []model.Shift, workers ...model.Worker) *db.MemoryDB {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemoryDB()

	require.NoError(t, store.UpsertSite(ctx, model.Site{ID: testSite, Name: "North Ward"}))
	for i, s := range shifts {
		require.NoError(t, store.UpsertShift(ctx, s, i+1))
	}
	for _, w := range workers {
		require.NoError(t, store.UpsertWorker(ctx, w))
		require.NoError(t, store.AddWorkerToSite(ctx, testSite, w.ID, ""))
	}
	return store
}

// newDayNightStore is the two shift, two worker site used by most tests
func newDayNightStore(t *testing.T) *db.MemoryDB {
	return newStore(t, []model.Shift{dayShift, nightShift},
		model.Worker{ID: "alice", Name: "Alice"},
		model.Worker{ID: "bob", Name: "Bob"})
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Generation.Iterations = 20
	cfg.Generation.ForcedIterations = 10
	cfg.Generation.Parallelism = 2
	return cfg
}

// recordingMetrics remembers generation outcomes and commit results
type recordingMetrics struct {
	metrics.NopMetrics
	mu       sync.Mutex
	outcomes []string
	commits  []string
	runs     int
}

func (r *recordingMetrics) ObserveGeneration(_ string, outcome string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingMetrics) RecordRuns(_ string, runs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs += runs
}

func (r *recordingMetrics) IncrementCommit(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, result)
}

// mockPublisher implements SchedulePublisher for testing
type mockPublisher struct {
	spreadsheetID string
	window        model.DateRange
	grid          export.Grid
	calls         int
	err           error
}

func (m *mockPublisher) PublishSchedule(_ context.Context, spreadsheetID string, window model.DateRange, grid export.Grid) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.spreadsheetID = spreadsheetID
	m.window = window
	m.grid = grid
	return nil
}
