package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/core/services"
)

type assignmentJSON struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	ShiftID  string `json:"shiftId"`
	WorkerID string `json:"workerId"`
	IsLocked bool   `json:"isLocked"`
	Status   string `json:"status,omitempty"`
}

type failureJSON struct {
	WorkerID   string `json:"workerId"`
	WorkerName string `json:"workerName"`
	Reason     string `json:"reason"`
}

type conflictJSON struct {
	Date       string        `json:"date"`
	ShiftID    string        `json:"shiftId"`
	ShiftName  string        `json:"shiftName"`
	Forced     bool          `json:"forced"`
	WorkerID   string        `json:"workerId,omitempty"`
	WorkerName string        `json:"workerName,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Failures   []failureJSON `json:"failures,omitempty"`
}

type scheduleEntryJSON struct {
	assignmentJSON
	ShiftName  string `json:"shiftName"`
	WorkerName string `json:"workerName"`
}

type requestJSON struct {
	Date     string `json:"date"`
	WorkerID string `json:"workerId"`
	Type     string `json:"type"`
}

func toAssignmentJSON(a model.Assignment) assignmentJSON {
	return assignmentJSON{
		ID:       a.ID,
		Date:     model.FormatDate(a.Date),
		ShiftID:  a.ShiftID,
		WorkerID: a.WorkerID,
		IsLocked: a.Locked,
		Status:   string(a.Status),
	}
}

func toConflictJSON(c model.ConflictEntry) conflictJSON {
	out := conflictJSON{
		Date:       model.FormatDate(c.Date),
		ShiftID:    c.ShiftID,
		ShiftName:  c.ShiftName,
		Forced:     c.Forced(),
		WorkerID:   c.WorkerID,
		WorkerName: c.WorkerName,
		Reason:     c.Reason,
	}
	for _, f := range c.Failures {
		out.Failures = append(out.Failures, failureJSON(f))
	}
	return out
}

func toRequestJSON(r model.Request) requestJSON {
	return requestJSON{Date: model.FormatDate(r.Date), WorkerID: r.WorkerID, Type: string(r.Type)}
}

type generateRequest struct {
	windowParams
	Force  bool  `json:"force"`
	DryRun bool  `json:"dryRun"`
	Seed   int64 `json:"seed"`
}

type generateResponse struct {
	RunID          string           `json:"runId"`
	Success        bool             `json:"success"`
	Committed      bool             `json:"committed"`
	Complete       bool             `json:"complete"`
	Score          int              `json:"score"`
	RunsEvaluated  int              `json:"runsEvaluated"`
	Seed           int64            `json:"seed"`
	Assignments    []assignmentJSON `json:"assignments"`
	ConflictReport []conflictJSON   `json:"conflictReport"`
}

// GenerateSchedule runs a generation for a site and window
func GenerateSchedule(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body generateRequest
		if err := decodeBody(r, &body); err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}
		window, err := body.window()
		if err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		result, err := services.GenerateSchedule(r.Context(), deps.Database, deps.Locker, deps.Metrics, deps.Cfg, deps.Logger, services.GenerateParams{
			SiteID:    body.SiteID,
			StartDate: window.Start,
			Days:      window.Days,
			Force:     body.Force,
			DryRun:    body.DryRun,
			Seed:      body.Seed,
		})
		if err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		resp := generateResponse{
			RunID:          result.RunID,
			Success:        result.Success,
			Committed:      result.Committed,
			Complete:       result.Complete,
			Score:          result.Score,
			RunsEvaluated:  result.RunsEvaluated,
			Seed:           result.Seed,
			Assignments:    make([]assignmentJSON, 0, len(result.Assignments)),
			ConflictReport: make([]conflictJSON, 0, len(result.Conflicts)),
		}
		for _, a := range result.Assignments {
			resp.Assignments = append(resp.Assignments, toAssignmentJSON(a))
		}
		for _, c := range result.Conflicts {
			resp.ConflictReport = append(resp.ConflictReport, toConflictJSON(c))
		}

		RespondJSON(w, http.StatusOK, resp)
	}
}

// GetSchedule returns the stored schedule and requests for a window
func GetSchedule(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, window, err := windowFromQuery(r.URL.Query())
		if err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		view, err := services.ViewSchedule(r.Context(), deps.Database, deps.Logger, params.SiteID, window,
			model.AssignmentStatus(r.URL.Query().Get("status")))
		if err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		schedule := make([]scheduleEntryJSON, 0, len(view.Entries))
		for _, e := range view.Entries {
			schedule = append(schedule, scheduleEntryJSON{
				assignmentJSON: toAssignmentJSON(e.Assignment),
				ShiftName:      e.ShiftName,
				WorkerName:     e.WorkerName,
			})
		}
		requests := make([]requestJSON, 0, len(view.Requests))
		for _, req := range view.Requests {
			requests = append(requests, toRequestJSON(req))
		}

		RespondJSON(w, http.StatusOK, map[string]interface{}{
			"siteId":    view.Site.ID,
			"startDate": model.FormatDate(window.Start),
			"endDate":   model.FormatDate(window.End()),
			"schedule":  schedule,
			"requests":  requests,
		})
	}
}

type assignmentRequest struct {
	SiteID   string `json:"siteId" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	WorkerID string `json:"userId" validate:"required"`
	// ShiftID is a shift ID, "OFF", or empty to clear the day
	ShiftID string `json:"shiftId"`
}

// PutAssignment locks a worker onto a shift, marks them off, or clears their day
func PutAssignment(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body assignmentRequest
		if err := decodeBody(r, &body); err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}
		date, _ := model.ParseDate(body.Date)

		result, err := services.SetManualAssignment(r.Context(), deps.Database, deps.Logger, body.SiteID, body.WorkerID, date, body.ShiftID)
		if err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		resp := map[string]interface{}{"message": "Updated"}
		if result.Assignment != nil {
			resp["assignment"] = toAssignmentJSON(*result.Assignment)
		}
		if result.Request != nil {
			resp["request"] = toRequestJSON(*result.Request)
		}
		RespondJSON(w, http.StatusOK, resp)
	}
}

type requestBody struct {
	SiteID   string `json:"siteId" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	WorkerID string `json:"userId" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=work off"`
}

// PutRequest records a work or off request
func PutRequest(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body requestBody
		if err := decodeBody(r, &body); err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}
		date, _ := model.ParseDate(body.Date)

		request := model.Request{SiteID: body.SiteID, WorkerID: body.WorkerID, Date: date, Type: model.RequestType(body.Type)}
		if err := services.SetRequest(r.Context(), deps.Database, deps.Logger, request); err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}
		RespondJSON(w, http.StatusOK, map[string]interface{}{"message": "Updated", "request": toRequestJSON(request)})
	}
}

// PublishSchedule marks a window as published
func PublishSchedule(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body windowParams
		if err := decodeBody(r, &body); err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}
		window, err := body.window()
		if err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		result, err := services.PublishSchedule(r.Context(), deps.Database, deps.Publisher, deps.Cfg, deps.Logger, body.SiteID, window)
		if err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message":      "Schedule published",
			"published":    result.Published,
			"sheetWritten": result.SheetWritten,
		})
	}
}

// ExportSchedule downloads the schedule as CSV or XLSX
func ExportSchedule(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := services.ExportFormat(chi.URLParam(r, "format"))
		params, window, err := windowFromQuery(r.URL.Query())
		if err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		// Buffer so a failure can still be reported as JSON
		var buf bytes.Buffer
		status := model.AssignmentStatus(r.URL.Query().Get("status"))
		if err := services.ExportSchedule(r.Context(), deps.Database, deps.Logger, params.SiteID, window, status, format, &buf); err != nil {
			respondServiceError(w, r, deps.Logger, err)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFilename(window, format)))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
