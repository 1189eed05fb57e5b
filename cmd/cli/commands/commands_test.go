package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
	"github.com/jakechorley/shift-rota/pkg/lock"
	"github.com/jakechorley/shift-rota/pkg/metrics"
)

const testSeed = `
site:
  id: north
  name: North Ward
shifts:
  - id: day
    name: Day
    start: "08:00"
    end: "16:00"
    requiredStaff: 1
workers:
  - id: alice
    name: Alice
  - id: bob
    name: Bob
  - id: carol
    name: Carol
`

func newTestApp(t *testing.T) (*AppContext, *db.MemoryDB) {
	t.Helper()

	cfg := config.Default()
	cfg.Generation.Iterations = 10
	cfg.Generation.ForcedIterations = 5
	cfg.Generation.Parallelism = 2

	store := db.NewMemoryDB()
	return &AppContext{
		Env:      "test",
		Cfg:      cfg,
		Database: store,
		Locker:   lock.NewLocalLocker(),
		Metrics:  metrics.NewNop(),
		Logger:   zap.NewNop(),
		Ctx:      context.Background(),
	}, store
}

// seededApp returns an app whose store holds the north site
func seededApp(t *testing.T) (*AppContext, *db.MemoryDB) {
	t.Helper()
	app, store := newTestApp(t)
	_, err := run(t, SeedCmd(app), writeSeed(t))
	require.NoError(t, err)
	return app, store
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0644))
	return path
}

// run executes cmd with args and returns what it printed
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var testStart = mustDate("2025-03-10")

func mustDate(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSeedCmd(t *testing.T) {
	app, store := newTestApp(t)

	out, err := run(t, SeedCmd(app), writeSeed(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Site north seeded")
	assert.Contains(t, out, "Workers:    3")

	workers, err := store.ListSiteWorkers(context.Background(), "north")
	require.NoError(t, err)
	assert.Len(t, workers, 3)
}

func TestSeedCmd_MissingFile(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := run(t, SeedCmd(app), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGenerateCmd_Commits(t *testing.T) {
	app, store := seededApp(t)

	out, err := run(t, GenerateCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3", "--seed", "42", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule Generation Results")
	assert.Contains(t, out, "Seed:     42")
	assert.Contains(t, out, "Schedule has been saved to the database")

	entries, err := store.ListSchedule(context.Background(), "north", model.NewDateRange(testStart, 3), "")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestGenerateCmd_DryRun(t *testing.T) {
	app, store := seededApp(t)

	out, err := run(t, GenerateCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "This was a dry run")

	entries, err := store.ListSchedule(context.Background(), "north", model.NewDateRange(testStart, 3), "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateCmd_RequiresSite(t *testing.T) {
	app, _ := seededApp(t)

	_, err := run(t, GenerateCmd(app), "--start", "2025-03-10", "--days", "3")
	assert.Error(t, err)
}

func TestAssignCmd(t *testing.T) {
	app, store := seededApp(t)
	ctx := context.Background()
	window := model.NewDateRange(testStart, 1)

	out, err := run(t, AssignCmd(app), "--site", "north", "2025-03-10", "alice", "day")
	require.NoError(t, err)
	assert.Contains(t, out, "alice locked onto day on 2025-03-10")

	locked, err := store.ListAssignments(ctx, "north", window, db.AssignmentFilter{LockedOnly: true})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, "alice", locked[0].WorkerID)

	out, err = run(t, AssignCmd(app), "--site", "north", "2025-03-10", "alice", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "alice marked off on 2025-03-10")

	locked, err = store.ListAssignments(ctx, "north", window, db.AssignmentFilter{LockedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, locked)

	requests, err := store.ListRequests(ctx, "north", window)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, model.RequestOff, requests[0].Type)

	out, err = run(t, AssignCmd(app), "--site", "north", "2025-03-10", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared alice on 2025-03-10")

	requests, err = store.ListRequests(ctx, "north", window)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestAssignCmd_UnknownShift(t *testing.T) {
	app, _ := seededApp(t)

	_, err := run(t, AssignCmd(app), "--site", "north", "2025-03-10", "alice", "evening")
	assert.Error(t, err)
}

func TestRequestCmdAndView(t *testing.T) {
	app, _ := seededApp(t)

	out, err := run(t, RequestCmd(app), "--site", "north", "2025-03-11", "bob", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded work request for bob on 2025-03-11")

	_, err = run(t, RequestCmd(app), "--site", "north", "2025-03-11", "bob", "maybe")
	assert.Error(t, err)

	_, err = run(t, GenerateCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3", "--seed", "7", "--force")
	require.NoError(t, err)

	out, err = run(t, ViewCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "North Ward")
	assert.Contains(t, out, "Assignments: 3")
	assert.Contains(t, out, "Requests (1):")
	assert.Contains(t, out, "2025-03-10 Mon")
}

func TestPublishCmd_WithoutSpreadsheet(t *testing.T) {
	app, store := seededApp(t)

	_, err := run(t, GenerateCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3", "--seed", "3", "--force")
	require.NoError(t, err)

	out, err := run(t, PublishCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Published 3 assignments")
	assert.Contains(t, out, "No spreadsheet configured")

	published, err := store.ListSchedule(context.Background(), "north", model.NewDateRange(testStart, 3), model.StatusPublished)
	require.NoError(t, err)
	assert.Len(t, published, 3)
}

func TestExportCmd(t *testing.T) {
	app, _ := seededApp(t)

	_, err := run(t, GenerateCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3", "--seed", "5", "--force")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	out, err := run(t, ExportCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule exported to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "date,shift,worker", lines[0])
	assert.Len(t, lines, 4)
}

func TestExportCmd_BadFormatLeavesNoFile(t *testing.T) {
	app, _ := seededApp(t)

	path := filepath.Join(t.TempDir(), "out.pdf")
	_, err := run(t, ExportCmd(app), "--site", "north", "--start", "2025-03-10", "--days", "3", "--format", "pdf", "--out", path)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestMigrateCmd_RequiresPostgres(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := run(t, MigrateCmd(app))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a Postgres database")
}

func TestAppContext_CloseRunsInReverse(t *testing.T) {
	app, _ := newTestApp(t)

	var order []int
	app.OnClose(func() { order = append(order, 1) })
	app.OnClose(func() { order = append(order, 2) })
	app.Close()
	app.Close()

	assert.Equal(t, []int{2, 1}, order)
}

func TestAppContext_NoPublisherWithoutSpreadsheet(t *testing.T) {
	app, _ := newTestApp(t)

	p, err := app.Publisher()
	require.NoError(t, err)
	assert.Nil(t, p)
}
