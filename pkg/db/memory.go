package db

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

type shiftRecord struct {
	shift    model.Shift
	position int
}

type requestKey struct {
	siteID   string
	workerID string
	date     string
}

// MemoryDB is an in-process Database used by `serve --memory`, demos and tests.
// All state is lost on exit.
type MemoryDB struct {
	mu          sync.RWMutex
	sites       map[string]model.Site
	categories  map[string]Category
	shifts      map[string]shiftRecord // shiftID -> shift
	workers     map[string]model.Worker
	siteWorkers map[string]map[string]string // siteID -> workerID -> categoryID
	settings    map[string]model.SettingsOverride
	global      map[string]string
	requests    map[requestKey]model.Request
	assignments []model.Assignment
}

var _ Database = (*MemoryDB)(nil)

// NewMemoryDB creates an empty in-memory database
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		sites:       map[string]model.Site{},
		categories:  map[string]Category{},
		shifts:      map[string]shiftRecord{},
		workers:     map[string]model.Worker{},
		siteWorkers: map[string]map[string]string{},
		settings:    map[string]model.SettingsOverride{},
		global:      map[string]string{},
		requests:    map[requestKey]model.Request{},
	}
}

// Close is a no-op
func (m *MemoryDB) Close() {}

func (m *MemoryDB) GetSite(_ context.Context, siteID string) (*model.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	site, ok := m.sites[siteID]
	if !ok {
		return nil, fmt.Errorf("site %s: %w", siteID, ErrNotFound)
	}
	return &site, nil
}

func (m *MemoryDB) UpsertSite(_ context.Context, site model.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sites[site.ID] = site
	return nil
}

func (m *MemoryDB) UpsertCategory(_ context.Context, category Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categories[category.ID] = category
	return nil
}

func (m *MemoryDB) UpsertShift(_ context.Context, shift model.Shift, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sites[shift.SiteID]; !ok {
		return fmt.Errorf("site %s: %w", shift.SiteID, ErrNotFound)
	}
	m.shifts[shift.ID] = shiftRecord{shift: shift, position: position}
	return nil
}

func (m *MemoryDB) UpsertWorker(_ context.Context, worker model.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	worker.CategoryPriority = 0
	m.workers[worker.ID] = worker
	return nil
}

func (m *MemoryDB) AddWorkerToSite(_ context.Context, siteID, workerID, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sites[siteID]; !ok {
		return fmt.Errorf("site %s: %w", siteID, ErrNotFound)
	}
	if _, ok := m.workers[workerID]; !ok {
		return fmt.Errorf("worker %s: %w", workerID, ErrNotFound)
	}
	if categoryID != "" {
		if _, ok := m.categories[categoryID]; !ok {
			return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
		}
	}

	if m.siteWorkers[siteID] == nil {
		m.siteWorkers[siteID] = map[string]string{}
	}
	m.siteWorkers[siteID][workerID] = categoryID
	return nil
}

func (m *MemoryDB) ListActiveShifts(_ context.Context, siteID string) ([]model.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]shiftRecord, 0)
	for _, r := range m.shifts {
		if r.shift.SiteID == siteID {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].position != records[j].position {
			return records[i].position < records[j].position
		}
		return records[i].shift.ID < records[j].shift.ID
	})

	shifts := make([]model.Shift, len(records))
	for i, r := range records {
		shifts[i] = r.shift
	}
	return shifts, nil
}

func (m *MemoryDB) ListSiteWorkers(_ context.Context, siteID string) ([]model.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	workers := make([]model.Worker, 0, len(m.siteWorkers[siteID]))
	for workerID, categoryID := range m.siteWorkers[siteID] {
		w := m.workers[workerID]
		w.CategoryPriority = model.DefaultCategoryPriority
		if c, ok := m.categories[categoryID]; ok {
			w.CategoryPriority = c.Priority
		}
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool {
		if workers[i].Name != workers[j].Name {
			return workers[i].Name < workers[j].Name
		}
		return workers[i].ID < workers[j].ID
	})
	return workers, nil
}

func (m *MemoryDB) GetWorkerSettings(_ context.Context, workerID string) (*model.SettingsOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[workerID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryDB) SetWorkerSettings(_ context.Context, workerID string, settings model.SettingsOverride) error {
	if err := ValidateOverride(settings); err != nil {
		return fmt.Errorf("invalid settings for worker %s: %w", workerID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workers[workerID]; !ok {
		return fmt.Errorf("worker %s: %w", workerID, ErrNotFound)
	}
	settings.ShiftRanking = slices.Clone(settings.ShiftRanking)
	settings.Availability.BlockedShifts = slices.Clone(settings.Availability.BlockedShifts)
	m.settings[workerID] = settings
	return nil
}

func (m *MemoryDB) GetGlobalDefaults(_ context.Context) (*model.SettingsOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return DecodeGlobalSettings(m.global)
}

func (m *MemoryDB) SetGlobalDefaults(_ context.Context, settings model.SettingsOverride) error {
	if err := ValidateOverride(settings); err != nil {
		return fmt.Errorf("invalid global settings: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range EncodeGlobalSettings(settings) {
		m.global[k] = v
	}
	return nil
}

func (m *MemoryDB) ListRequests(_ context.Context, siteID string, window model.DateRange) ([]model.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := make([]model.Request, 0)
	for _, r := range m.requests {
		if r.SiteID == siteID && window.Contains(r.Date) {
			requests = append(requests, r)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].Date.Equal(requests[j].Date) {
			return requests[i].Date.Before(requests[j].Date)
		}
		return requests[i].WorkerID < requests[j].WorkerID
	})
	return requests, nil
}

func (m *MemoryDB) SetRequest(_ context.Context, request model.Request) error {
	if !request.Type.IsValid() {
		return fmt.Errorf("invalid request type %q", request.Type)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	request.Date = model.DateOnly(request.Date)
	m.requests[keyOf(request.SiteID, request.WorkerID, request.Date)] = request
	return nil
}

func (m *MemoryDB) ListAssignments(_ context.Context, siteID string, window model.DateRange, filter AssignmentFilter) ([]model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filterAssignments(siteID, window, filter), nil
}

func (m *MemoryDB) filterAssignments(siteID string, window model.DateRange, filter AssignmentFilter) []model.Assignment {
	result := make([]model.Assignment, 0)
	for _, a := range m.assignments {
		if a.SiteID != siteID || !window.Contains(a.Date) {
			continue
		}
		if filter.LockedOnly && !a.Locked {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, a)
	}
	sortAssignments(result)
	return result
}

// CommitAssignments replaces every non-locked assignment in the window. Nothing changes if
// the new set would duplicate an existing (date, shift, worker).
func (m *MemoryDB) CommitAssignments(_ context.Context, siteID string, window model.DateRange, assignments []model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]model.Assignment, 0, len(m.assignments)+len(assignments))
	seen := make(map[string]bool)
	for _, a := range m.assignments {
		if a.SiteID == siteID && window.Contains(a.Date) && !a.Locked {
			continue
		}
		next = append(next, a)
		if a.SiteID == siteID {
			seen[uniqueKey(a)] = true
		}
	}

	for _, a := range assignments {
		a.SiteID = siteID
		a.Date = model.DateOnly(a.Date)
		if !window.Contains(a.Date) {
			return fmt.Errorf("assignment on %s is outside %s", model.FormatDate(a.Date), window)
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Status == "" {
			a.Status = model.StatusDraft
		}
		key := uniqueKey(a)
		if seen[key] {
			return fmt.Errorf("%w: worker %s on %s %s", ErrDuplicateAssignment, a.WorkerID, a.ShiftID, model.FormatDate(a.Date))
		}
		seen[key] = true
		next = append(next, a)
	}

	m.assignments = next
	return nil
}

// ReplaceWorkerDay clears the worker's assignment and request for the date, then stores the given ones
func (m *MemoryDB) ReplaceWorkerDay(_ context.Context, siteID, workerID string, date time.Time, assignment *model.Assignment, request *model.Request) error {
	if request != nil && !request.Type.IsValid() {
		return fmt.Errorf("invalid request type %q", request.Type)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	date = model.DateOnly(date)
	kept := make([]model.Assignment, 0, len(m.assignments))
	for _, a := range m.assignments {
		if a.SiteID == siteID && a.WorkerID == workerID && a.Date.Equal(date) {
			continue
		}
		kept = append(kept, a)
	}
	delete(m.requests, keyOf(siteID, workerID, date))

	if assignment != nil {
		a := *assignment
		a.SiteID, a.WorkerID, a.Date = siteID, workerID, date
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Status == "" {
			a.Status = model.StatusDraft
		}
		kept = append(kept, a)
	}
	if request != nil {
		r := *request
		r.SiteID, r.WorkerID, r.Date = siteID, workerID, date
		m.requests[keyOf(siteID, workerID, date)] = r
	}

	m.assignments = kept
	return nil
}

func (m *MemoryDB) PublishAssignments(_ context.Context, siteID string, window model.DateRange) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for i := range m.assignments {
		a := &m.assignments[i]
		if a.SiteID == siteID && window.Contains(a.Date) && a.Status != model.StatusPublished {
			a.Status = model.StatusPublished
			count++
		}
	}
	return count, nil
}

func (m *MemoryDB) ListSchedule(_ context.Context, siteID string, window model.DateRange, status model.AssignmentStatus) ([]ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	assignments := m.filterAssignments(siteID, window, AssignmentFilter{Status: status})
	entries := make([]ScheduleEntry, 0, len(assignments))
	for _, a := range assignments {
		shift := m.shifts[a.ShiftID].shift
		entries = append(entries, ScheduleEntry{
			Assignment: a,
			ShiftName:  shift.Name,
			ShiftStart: shift.Start,
			WorkerName: m.workers[a.WorkerID].Name,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].ShiftStart < entries[j].ShiftStart
	})
	return entries, nil
}

func keyOf(siteID, workerID string, date time.Time) requestKey {
	return requestKey{siteID: siteID, workerID: workerID, date: model.FormatDate(date)}
}

func uniqueKey(a model.Assignment) string {
	return model.FormatDate(a.Date) + "|" + a.ShiftID + "|" + a.WorkerID
}

func sortAssignments(assignments []model.Assignment) {
	sort.Slice(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.ShiftID != b.ShiftID {
			return a.ShiftID < b.ShiftID
		}
		return a.WorkerID < b.WorkerID
	})
}
