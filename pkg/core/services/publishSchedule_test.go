package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

// storeWithSchedule holds a committed three day draft: Alice on Day, Bob on Night
func storeWithSchedule(t *testing.T) (*db.MemoryDB, model.DateRange) {
	t.Helper()
	ctx := context.Background()
	store := newDayNightStore(t)
	window := model.NewDateRange(date("2025-03-10"), 3)

	var assignments []model.Assignment
	for _, d := range window.Dates() {
		assignments = append(assignments,
			model.Assignment{SiteID: testSite, Date: d, ShiftID: "day", WorkerID: "alice"},
			model.Assignment{SiteID: testSite, Date: d, ShiftID: "night", WorkerID: "bob"})
	}
	require.NoError(t, store.CommitAssignments(ctx, testSite, window, assignments))
	require.NoError(t, store.SetRequest(ctx, model.Request{SiteID: testSite, WorkerID: "bob", Date: date("2025-03-11"), Type: model.RequestWork}))
	return store, window
}

func TestViewSchedule(t *testing.T) {
	store, window := storeWithSchedule(t)

	view, err := ViewSchedule(context.Background(), store, zap.NewNop(), testSite, window, "")
	require.NoError(t, err)

	assert.Equal(t, "North Ward", view.Site.Name)
	assert.Len(t, view.Shifts, 2)
	require.Len(t, view.Entries, 6)
	assert.Equal(t, "Day", view.Entries[0].ShiftName)
	assert.Equal(t, "Alice", view.Entries[0].WorkerName)
	assert.Len(t, view.Requests, 1)

	published, err := ViewSchedule(context.Background(), store, zap.NewNop(), testSite, window, model.StatusPublished)
	require.NoError(t, err)
	assert.Empty(t, published.Entries)

	_, err = ViewSchedule(context.Background(), store, zap.NewNop(), testSite, window, "archived")
	assert.True(t, IsValidationError(err))
}

func TestPublishSchedule_WritesSheet(t *testing.T) {
	ctx := context.Background()
	store, window := storeWithSchedule(t)
	cfg := testConfig()
	cfg.Publish.SpreadsheetID = "sheet-123"
	publisher := &mockPublisher{}

	result, err := PublishSchedule(ctx, store, publisher, cfg, zap.NewNop(), testSite, window)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Published)
	assert.True(t, result.SheetWritten)
	assert.Equal(t, 1, publisher.calls)
	assert.Equal(t, "sheet-123", publisher.spreadsheetID)
	assert.Equal(t, window, publisher.window)
	assert.Equal(t, []string{"Date", "Day", "Night"}, publisher.grid.Header)
	assert.Equal(t, []string{"2025-03-10", "Alice", "Bob"}, publisher.grid.Rows[0])

	view, err := ViewSchedule(ctx, store, zap.NewNop(), testSite, window, model.StatusPublished)
	require.NoError(t, err)
	assert.Len(t, view.Entries, 6)
}

func TestPublishSchedule_WithoutSpreadsheet(t *testing.T) {
	store, window := storeWithSchedule(t)
	publisher := &mockPublisher{}

	result, err := PublishSchedule(context.Background(), store, publisher, testConfig(), zap.NewNop(), testSite, window)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Published)
	assert.False(t, result.SheetWritten)
	assert.Zero(t, publisher.calls)
	assert.Len(t, result.Grid.Rows, 3)
}

func TestPublishSchedule_SheetError(t *testing.T) {
	store, window := storeWithSchedule(t)
	cfg := testConfig()
	cfg.Publish.SpreadsheetID = "sheet-123"

	_, err := PublishSchedule(context.Background(), store, &mockPublisher{err: errors.New("quota exceeded")}, cfg, zap.NewNop(), testSite, window)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestExportSchedule(t *testing.T) {
	store, window := storeWithSchedule(t)

	var buf bytes.Buffer
	require.NoError(t, ExportSchedule(context.Background(), store, zap.NewNop(), testSite, window, "", FormatCSV, &buf))
	assert.Equal(t,
		"date,shift,worker\n"+
			"2025-03-10,Day,Alice\n2025-03-10,Night,Bob\n"+
			"2025-03-11,Day,Alice\n2025-03-11,Night,Bob\n"+
			"2025-03-12,Day,Alice\n2025-03-12,Night,Bob\n",
		buf.String())

	buf.Reset()
	require.NoError(t, ExportSchedule(context.Background(), store, zap.NewNop(), testSite, window, "", FormatXLSX, &buf))
	assert.NotZero(t, buf.Len())

	err := ExportSchedule(context.Background(), store, zap.NewNop(), testSite, window, "", "pdf", &buf)
	assert.True(t, IsValidationError(err))
}

func TestExportFilename(t *testing.T) {
	march, err := MonthWindow(2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, "schedule_2025_3.csv", ExportFilename(march, FormatCSV))

	week := model.NewDateRange(date("2025-03-10"), 7)
	assert.Equal(t, "schedule_2025-03-10_2025-03-16.xlsx", ExportFilename(week, FormatXLSX))
}

func TestMonthWindow(t *testing.T) {
	feb, err := MonthWindow(2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, date("2024-02-01"), feb.Start)
	assert.Equal(t, 29, feb.Days)

	_, err = MonthWindow(2024, 13)
	assert.True(t, IsValidationError(err))
}
