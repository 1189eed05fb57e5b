package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

func TestSetManualAssignment_LockThenOffThenClear(t *testing.T) {
	ctx := context.Background()
	store := newDayNightStore(t)
	day := date("2025-03-11")
	window := model.NewDateRange(day, 1)

	// Lock onto a shift
	result, err := SetManualAssignment(ctx, store, zap.NewNop(), testSite, "alice", day, "day")
	require.NoError(t, err)
	require.NotNil(t, result.Assignment)
	assert.Nil(t, result.Request)

	locked, err := store.ListAssignments(ctx, testSite, window, db.AssignmentFilter{LockedOnly: true})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, "day", locked[0].ShiftID)
	assert.Equal(t, model.StatusDraft, locked[0].Status)

	// OFF swaps the lock for an off request
	result, err = SetManualAssignment(ctx, store, zap.NewNop(), testSite, "alice", day, "off")
	require.NoError(t, err)
	assert.Nil(t, result.Assignment)
	require.NotNil(t, result.Request)
	assert.Equal(t, model.RequestOff, result.Request.Type)

	all, err := store.ListAssignments(ctx, testSite, window, db.AssignmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	requests, err := store.ListRequests(ctx, testSite, window)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, model.RequestOff, requests[0].Type)

	// Empty clears the day
	_, err = SetManualAssignment(ctx, store, zap.NewNop(), testSite, "alice", day, "")
	require.NoError(t, err)
	requests, err = store.ListRequests(ctx, testSite, window)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestSetManualAssignment_Validation(t *testing.T) {
	// Shift that only runs at weekends
	weekend := dayShift
	weekend.ID = "weekend"
	weekend.Name = "Weekend"
	weekend.ActiveDays = model.NewWeekdayMask(6, 0)

	tests := []struct {
		name     string
		siteID   string
		workerID string
		shiftID  string
	}{
		{name: "missing site", workerID: "alice", shiftID: "day"},
		{name: "missing worker", siteID: testSite, shiftID: "day"},
		{name: "unknown site", siteID: "nowhere", workerID: "alice", shiftID: "day"},
		{name: "worker not at site", siteID: testSite, workerID: "zed", shiftID: "day"},
		{name: "unknown shift", siteID: testSite, workerID: "alice", shiftID: "evening"},
		{name: "shift inactive on date", siteID: testSite, workerID: "alice", shiftID: "weekend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t, []model.Shift{dayShift, weekend}, model.Worker{ID: "alice", Name: "Alice"})
			// 2025-03-11 is a Tuesday
			_, err := SetManualAssignment(context.Background(), store, zap.NewNop(), tt.siteID, tt.workerID, date("2025-03-11"), tt.shiftID)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "got %v", err)
		})
	}
}

func TestSetRequest(t *testing.T) {
	ctx := context.Background()
	store := newDayNightStore(t)
	day := date("2025-03-12")

	require.NoError(t, SetRequest(ctx, store, zap.NewNop(), model.Request{SiteID: testSite, WorkerID: "bob", Date: day, Type: model.RequestWork}))
	require.NoError(t, SetRequest(ctx, store, zap.NewNop(), model.Request{SiteID: testSite, WorkerID: "bob", Date: day, Type: model.RequestOff}))

	requests, err := store.ListRequests(ctx, testSite, model.NewDateRange(day, 1))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, model.RequestOff, requests[0].Type)

	invalidRequests := []model.Request{
		{WorkerID: "bob", Date: day, Type: model.RequestOff},
		{SiteID: testSite, Date: day, Type: model.RequestOff},
		{SiteID: testSite, WorkerID: "bob", Type: model.RequestOff},
		{SiteID: testSite, WorkerID: "bob", Date: day, Type: "maybe"},
		{SiteID: testSite, WorkerID: "zed", Date: day, Type: model.RequestOff},
		{SiteID: "nowhere", WorkerID: "bob", Date: day, Type: model.RequestOff},
	}
	for _, r := range invalidRequests {
		err := SetRequest(ctx, store, zap.NewNop(), r)
		assert.True(t, IsValidationError(err), "request %+v: got %v", r, err)
	}
}
