package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
	"github.com/jakechorley/shift-rota/pkg/lock"
	"github.com/jakechorley/shift-rota/pkg/metrics"
)

const testSite = "site-1"

func newTestServer(t *testing.T) (*httptest.Server, *db.MemoryDB, lock.Locker) {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemoryDB()

	require.NoError(t, store.UpsertSite(ctx, model.Site{ID: testSite, Name: "North Ward"}))
	require.NoError(t, store.UpsertShift(ctx, model.Shift{ID: "day", SiteID: testSite, Name: "Day",
		Start: model.MustParseTimeOfDay("08:00"), End: model.MustParseTimeOfDay("16:00"), RequiredStaff: 1}, 1))
	require.NoError(t, store.UpsertShift(ctx, model.Shift{ID: "night", SiteID: testSite, Name: "Night",
		Start: model.MustParseTimeOfDay("22:00"), End: model.MustParseTimeOfDay("06:00"), RequiredStaff: 1}, 2))
	for _, w := range []model.Worker{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}} {
		require.NoError(t, store.UpsertWorker(ctx, w))
		require.NoError(t, store.AddWorkerToSite(ctx, testSite, w.ID, ""))
	}

	cfg := config.Default()
	cfg.Generation.Iterations = 10
	cfg.Generation.ForcedIterations = 5

	reg := prometheus.NewRegistry()
	locker := lock.NewLocalLocker()
	server := httptest.NewServer(NewRouter(Deps{
		Database: store,
		Locker:   locker,
		Metrics:  metrics.NewPrometheus(reg, ""),
		Gatherer: reg,
		Cfg:      cfg,
		Logger:   zap.NewNop(),
	}))
	t.Cleanup(server.Close)

	return server, store, locker
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestGenerateThenRead(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/schedule/generate", map[string]interface{}{
		"siteId":    testSite,
		"startDate": "2025-03-10",
		"days":      3,
		"seed":      4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["committed"])
	assert.Len(t, body["assignments"], 6)
	assert.Empty(t, body["conflictReport"])
	assert.NotEmpty(t, body["runId"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/schedule?siteId=site-1&startDate=2025-03-10&days=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	schedule := body["schedule"].([]interface{})
	require.Len(t, schedule, 6)
	first := schedule[0].(map[string]interface{})
	assert.Equal(t, "2025-03-10", first["date"])
	assert.Equal(t, "Day", first["shiftName"])
	assert.Equal(t, "draft", first["status"])
	assert.Equal(t, "2025-03-12", body["endDate"])

	// Month windows work too
	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/schedule?siteId=site-1&month=3&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Len(t, body["schedule"], 6)
	assert.Equal(t, "2025-03-31", body["endDate"])
}

func TestGenerate_ConflictsAreReported(t *testing.T) {
	server, store, _ := newTestServer(t)
	require.NoError(t, store.UpsertShift(context.Background(), model.Shift{ID: "late", SiteID: testSite, Name: "Late",
		Start: model.MustParseTimeOfDay("12:00"), End: model.MustParseTimeOfDay("20:00"), RequiredStaff: 1}, 3))

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/schedule/generate", map[string]interface{}{
		"siteId": testSite, "startDate": "2025-03-10", "days": 1, "seed": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["committed"])
	report := body["conflictReport"].([]interface{})
	require.NotEmpty(t, report)
	assert.Equal(t, false, report[0].(map[string]interface{})["forced"])

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/schedule/generate", map[string]interface{}{
		"siteId": testSite, "startDate": "2025-03-10", "days": 1, "seed": 1, "force": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["committed"])
}

func TestGenerate_Errors(t *testing.T) {
	server, _, locker := newTestServer(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{name: "missing site", body: map[string]interface{}{"startDate": "2025-03-10", "days": 3}, status: http.StatusBadRequest},
		{name: "no window", body: map[string]interface{}{"siteId": testSite}, status: http.StatusBadRequest},
		{name: "bad date", body: map[string]interface{}{"siteId": testSite, "startDate": "10/03/2025", "days": 3}, status: http.StatusBadRequest},
		{name: "bad month", body: map[string]interface{}{"siteId": testSite, "month": 13, "year": 2025}, status: http.StatusBadRequest},
		{name: "unknown site", body: map[string]interface{}{"siteId": "nowhere", "month": 3, "year": 2025}, status: http.StatusBadRequest},
		{name: "malformed json", body: "not an object", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, server.URL+"/api/schedule/generate", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, body)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}

	t.Run("site already generating", func(t *testing.T) {
		lease, err := locker.Acquire(context.Background(), lock.SiteKey(testSite))
		require.NoError(t, err)
		defer lease.Release(context.Background())

		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/schedule/generate", map[string]interface{}{
			"siteId": testSite, "month": 3, "year": 2025,
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestPutAssignment(t *testing.T) {
	server, store, _ := newTestServer(t)
	ctx := context.Background()
	day, _ := model.ParseDate("2025-03-11")

	resp, body := doJSON(t, http.MethodPut, server.URL+"/api/schedule/assignment", map[string]interface{}{
		"siteId": testSite, "date": "2025-03-11", "userId": "alice", "shiftId": "night",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Updated", body["message"])
	assert.Equal(t, true, body["assignment"].(map[string]interface{})["isLocked"])

	locked, err := store.ListAssignments(ctx, testSite, model.NewDateRange(day, 1), db.AssignmentFilter{LockedOnly: true})
	require.NoError(t, err)
	require.Len(t, locked, 1)

	resp, body = doJSON(t, http.MethodPut, server.URL+"/api/schedule/assignment", map[string]interface{}{
		"siteId": testSite, "date": "2025-03-11", "userId": "alice", "shiftId": "OFF",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "off", body["request"].(map[string]interface{})["type"])

	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/schedule/assignment", map[string]interface{}{
		"siteId": testSite, "date": "2025-03-11", "shiftId": "day",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutRequest(t *testing.T) {
	server, store, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPut, server.URL+"/api/requests", map[string]interface{}{
		"siteId": testSite, "date": "2025-03-12", "userId": "bob", "type": "work",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	day, _ := model.ParseDate("2025-03-12")
	requests, err := store.ListRequests(context.Background(), testSite, model.NewDateRange(day, 1))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, model.RequestWork, requests[0].Type)

	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/requests", map[string]interface{}{
		"siteId": testSite, "date": "2025-03-12", "userId": "bob", "type": "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublishAndExport(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/schedule/generate", map[string]interface{}{
		"siteId": testSite, "startDate": "2025-03-10", "days": 3, "seed": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/schedule/publish", map[string]interface{}{
		"siteId": testSite, "month": 3, "year": 2025,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, 6.0, body["published"])
	assert.Equal(t, false, body["sheetWritten"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/schedule?siteId=site-1&month=3&year=2025&status=published", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Len(t, body["schedule"], 6)

	csvResp, err := http.Get(server.URL + "/api/schedule/export/csv?siteId=site-1&month=3&year=2025")
	require.NoError(t, err)
	defer csvResp.Body.Close()
	require.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Equal(t, "text/csv", csvResp.Header.Get("Content-Type"))
	assert.Contains(t, csvResp.Header.Get("Content-Disposition"), "schedule_2025_3.csv")
	data, err := io.ReadAll(csvResp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "date,shift,worker", lines[0])
	assert.Len(t, lines, 7)

	xlsxResp, err := http.Get(server.URL + "/api/schedule/export/xlsx?siteId=site-1&startDate=2025-03-10&days=7")
	require.NoError(t, err)
	defer xlsxResp.Body.Close()
	require.Equal(t, http.StatusOK, xlsxResp.StatusCode)
	assert.Contains(t, xlsxResp.Header.Get("Content-Disposition"), "schedule_2025-03-10_2025-03-16.xlsx")

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/schedule/export/pdf?siteId=site-1&month=3&year=2025", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/schedule/generate", map[string]interface{}{
		"siteId": testSite, "startDate": "2025-03-10", "days": 2, "dryRun": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metricsResp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	data, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(data), `shift_rota_generation_duration_seconds_count{outcome="dry_run",site="site-1"} 1`)
}
